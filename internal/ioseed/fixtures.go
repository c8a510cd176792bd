package ioseed

import (
	_ "embed"
	"fmt"
	"slices"
	"time"

	"github.com/gnames/gn"
	"github.com/vetcare/vetdb/pkg/errcode"
	"github.com/vetcare/vetdb/pkg/schema"
	"gopkg.in/yaml.v3"
)

//go:embed seeds.yaml
var SeedsYAML []byte

// Fixtures is the content of seeds.yaml.
type Fixtures struct {
	Admin         Account  `yaml:"admin"`
	Veterinarians []Vet    `yaml:"veterinarians"`
	Clients       []Client `yaml:"clients"`
}

// Account is a user login.
type Account struct {
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Phone     string `yaml:"phone"`
}

// Vet is a veterinarian with its account.
type Vet struct {
	Account           `yaml:",inline"`
	LicenseNumber     string              `yaml:"license_number"`
	Specialization    string              `yaml:"specialization"`
	YearsOfExperience int                 `yaml:"years_of_experience"`
	ConsultationFee   float64             `yaml:"consultation_fee"`
	Availability      schema.Availability `yaml:"availability"`
}

// Client is a pet owner with its account.
type Client struct {
	Account `yaml:",inline"`
	Address string `yaml:"address"`
	Pets    []Pet  `yaml:"pets"`
}

// Pet of a client.
type Pet struct {
	Name      string         `yaml:"name"`
	Species   schema.Species `yaml:"species"`
	Breed     string         `yaml:"breed"`
	Gender    schema.Gender  `yaml:"gender"`
	BirthDate string         `yaml:"birth_date"`
	Weight    float64        `yaml:"weight"`
}

// ParseFixtures reads and checks seed fixtures.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var res Fixtures
	if err := yaml.Unmarshal(data, &res); err != nil {
		return nil, FixtureError("cannot parse YAML", err)
	}
	if err := res.check(); err != nil {
		return nil, err
	}
	return &res, nil
}

func (f *Fixtures) check() error {
	emails := make(map[string]struct{})
	accounts := []Account{f.Admin}
	for _, v := range f.Veterinarians {
		if v.LicenseNumber == "" {
			return FixtureError("veterinarian without license number",
				fmt.Errorf("%s", v.Email))
		}
		accounts = append(accounts, v.Account)
	}
	for _, v := range f.Clients {
		accounts = append(accounts, v.Account)
		for _, p := range v.Pets {
			if err := p.check(); err != nil {
				return err
			}
		}
	}
	for _, v := range accounts {
		if v.Email == "" || v.Password == "" {
			return FixtureError("account without email or password",
				fmt.Errorf("%q", v.Email))
		}
		if _, ok := emails[v.Email]; ok {
			return FixtureError("duplicate email", fmt.Errorf("%s", v.Email))
		}
		emails[v.Email] = struct{}{}
	}
	return nil
}

func (p Pet) check() error {
	if !slices.Contains(schema.EnumValues("pets_species_enum"), string(p.Species)) {
		return FixtureError("unknown species", fmt.Errorf("%s: %s", p.Name, p.Species))
	}
	if p.Gender != "" && !slices.Contains(schema.EnumValues("pets_gender_enum"), string(p.Gender)) {
		return FixtureError("unknown gender", fmt.Errorf("%s: %s", p.Name, p.Gender))
	}
	if p.BirthDate != "" {
		if _, err := time.Parse(time.DateOnly, p.BirthDate); err != nil {
			return FixtureError("bad birth date", err)
		}
	}
	return nil
}

// FixtureError is returned for unreadable or inconsistent seed data.
func FixtureError(reason string, err error) error {
	return &gn.Error{
		Code: errcode.SeedFixtureError,
		Msg:  "Seed fixtures are invalid: <em>%s</em>",
		Vars: []any{reason},
		Err:  fmt.Errorf("seed fixtures: %s: %w", reason, err),
	}
}

// InsertError is returned when seed rows cannot be written.
func InsertError(table string, err error) error {
	msg := `Cannot seed table <em>%s</em>

<em>How to fix:</em>
  1. Run <em>vetdb migrate</em> to bring the schema up to date
  2. Run <em>vetdb seed</em> again`

	return &gn.Error{
		Code: errcode.SeedInsertError,
		Msg:  msg,
		Vars: []any{table},
		Err:  fmt.Errorf("seed %s: %w", table, err),
	}
}
