// Package ioseed loads reference data (an administrator, veterinarians,
// clients and their pets) into a migrated schema using GORM.
package ioseed

import (
	"context"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnuuid"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/vetcare/vetdb/pkg/schema"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Option configures a Seeder.
type Option func(*Seeder)

// OptFixtures replaces the embedded seeds.yaml.
func OptFixtures(f *Fixtures) Option {
	return func(s *Seeder) {
		s.fixtures = f
	}
}

// OptBcryptCost sets the cost of password hashes.
func OptBcryptCost(i int) Option {
	return func(s *Seeder) {
		s.cost = i
	}
}

// OptBatchSize sets the number of rows per insert statement.
func OptBatchSize(i int) Option {
	return func(s *Seeder) {
		if i > 0 {
			s.batch = i
		}
	}
}

// OptProgress turns the progress bar on or off.
func OptProgress(b bool) Option {
	return func(s *Seeder) {
		s.progress = b
	}
}

// Seeder implements lifecycle.Seeder.
type Seeder struct {
	pool     *pgxpool.Pool
	fixtures *Fixtures
	cost     int
	batch    int
	progress bool
}

// New creates a Seeder on pool with the embedded fixtures.
func New(pool *pgxpool.Pool, opts ...Option) (*Seeder, error) {
	res := &Seeder{
		pool:     pool,
		cost:     bcrypt.DefaultCost,
		batch:    500,
		progress: true,
	}
	for _, opt := range opts {
		opt(res)
	}
	if res.fixtures == nil {
		f, err := ParseFixtures(SeedsYAML)
		if err != nil {
			return nil, err
		}
		res.fixtures = f
	}
	return res, nil
}

// Seed inserts rows that are not in the database yet and returns their
// number. All rows are written in one transaction.
func (s *Seeder) Seed(ctx context.Context) (int, error) {
	sqlDB := stdlib.OpenDBFromPool(s.pool)
	defer sqlDB.Close()

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{Logger: logger.Discard},
	)
	if err != nil {
		return 0, InsertError("*", err)
	}

	rows, err := s.build()
	if err != nil {
		return 0, err
	}

	var bar *pb.ProgressBar
	if s.progress {
		bar = pb.Full.Start(rows.count())
		bar.Set("prefix", "Seeding: ")
		bar.Set(pb.CleanOnFinish, true)
		defer bar.Finish()
	}

	var inserted int
	err = gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := insert(tx, bar, s.batch, rows.users)
		inserted += n
		if err != nil {
			return err
		}

		// accounts created by the application keep their own ids
		users, err := existingUsers(tx, rows.users)
		if err != nil {
			return err
		}
		rows.relinkUsers(users)

		if n, err = insert(tx, bar, s.batch, rows.vets); err != nil {
			return err
		}
		inserted += n
		if n, err = insert(tx, bar, s.batch, rows.clients); err != nil {
			return err
		}
		inserted += n

		clients, err := existingClients(tx, rows.clients)
		if err != nil {
			return err
		}
		rows.relinkPets(clients)

		n, err = insert(tx, bar, s.batch, rows.pets)
		inserted += n
		return err
	})
	if err != nil {
		return 0, err
	}

	gn.Info("Seeded <em>%s</em> new rows (%s in fixtures)",
		humanize.Comma(int64(inserted)), humanize.Comma(int64(rows.count())))
	return inserted, nil
}

func insert[T schema.Model](
	tx *gorm.DB,
	bar *pb.ProgressBar,
	batch int,
	rows []T,
) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&rows, batch)
	if res.Error != nil {
		return 0, InsertError(rows[0].TableName(), res.Error)
	}
	if bar != nil {
		bar.Add(len(rows))
	}
	return int(res.RowsAffected), nil
}

func existingUsers(tx *gorm.DB, users []*schema.User) (map[string]uuid.UUID, error) {
	emails := make([]string, len(users))
	for i, v := range users {
		emails[i] = v.Email
	}
	var found []schema.User
	err := tx.Select("id", "email").Where("email IN ?", emails).Find(&found).Error
	if err != nil {
		return nil, InsertError("users", err)
	}
	res := make(map[string]uuid.UUID, len(found))
	for _, v := range found {
		res[v.Email] = v.ID
	}
	return res, nil
}

// existingClients maps user ids to client ids.
func existingClients(tx *gorm.DB, clients []*schema.Client) (map[uuid.UUID]uuid.UUID, error) {
	if len(clients) == 0 {
		return nil, nil
	}
	userIDs := make([]uuid.UUID, len(clients))
	for i, v := range clients {
		userIDs[i] = v.UserID
	}
	var found []schema.Client
	err := tx.Select("id", "user_id").Where("user_id IN ?", userIDs).Find(&found).Error
	if err != nil {
		return nil, InsertError("clients", err)
	}
	res := make(map[uuid.UUID]uuid.UUID, len(found))
	for _, v := range found {
		res[v.UserID] = v.ID
	}
	return res, nil
}

type seedRows struct {
	users   []*schema.User
	vets    []*schema.Veterinarian
	clients []*schema.Client
	pets    []*schema.Pet

	// account emails of vets and clients, by position
	vetEmails    []string
	clientEmails []string
	// client index of every pet
	petClients []int
}

func (r *seedRows) count() int {
	return len(r.users) + len(r.vets) + len(r.clients) + len(r.pets)
}

// relinkUsers points vets and clients at the user ids the database
// actually holds.
func (r *seedRows) relinkUsers(ids map[string]uuid.UUID) {
	for i, v := range r.vets {
		if id, ok := ids[r.vetEmails[i]]; ok {
			v.UserID = id
		}
	}
	for i, v := range r.clients {
		if id, ok := ids[r.clientEmails[i]]; ok {
			v.UserID = id
		}
	}
}

// relinkPets points pets at the client ids the database actually holds.
func (r *seedRows) relinkPets(ids map[uuid.UUID]uuid.UUID) {
	for i, v := range r.pets {
		c := r.clients[r.petClients[i]]
		if id, ok := ids[c.UserID]; ok {
			v.ClientID = id
		}
	}
}

func userID(email string) uuid.UUID {
	return gnuuid.New("user:" + email)
}

func clientID(email string) uuid.UUID {
	return gnuuid.New("client:" + email)
}

func (s *Seeder) user(a Account, role schema.Role) (*schema.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), s.cost)
	if err != nil {
		return nil, FixtureError("cannot hash password", err)
	}
	return &schema.User{
		ID:         userID(a.Email),
		Email:      a.Email,
		Password:   string(hash),
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Phone:      optional(a.Phone),
		Role:       role,
		IsActive:   true,
		IsVerified: true,
	}, nil
}

func (s *Seeder) build() (*seedRows, error) {
	f := s.fixtures
	res := &seedRows{}

	admin, err := s.user(f.Admin, schema.RoleAdmin)
	if err != nil {
		return nil, err
	}
	res.users = append(res.users, admin)

	for _, v := range f.Veterinarians {
		u, err := s.user(v.Account, schema.RoleVet)
		if err != nil {
			return nil, err
		}
		res.users = append(res.users, u)
		vet := &schema.Veterinarian{
			ID:                gnuuid.New("veterinarian:" + v.LicenseNumber),
			UserID:            u.ID,
			LicenseNumber:     v.LicenseNumber,
			Specialization:    optional(v.Specialization),
			YearsOfExperience: v.YearsOfExperience,
			Availability:      v.Availability,
		}
		if v.ConsultationFee > 0 {
			fee := v.ConsultationFee
			vet.ConsultationFee = &fee
		}
		res.vets = append(res.vets, vet)
		res.vetEmails = append(res.vetEmails, v.Email)
	}

	for _, v := range f.Clients {
		u, err := s.user(v.Account, schema.RoleClient)
		if err != nil {
			return nil, err
		}
		res.users = append(res.users, u)
		c := &schema.Client{
			ID:      clientID(v.Email),
			UserID:  u.ID,
			Address: optional(v.Address),
		}
		res.clients = append(res.clients, c)
		res.clientEmails = append(res.clientEmails, v.Email)

		for _, p := range v.Pets {
			res.pets = append(res.pets, pet(c.ID, v.Email, p))
			res.petClients = append(res.petClients, len(res.clients)-1)
		}
	}
	return res, nil
}

func pet(client uuid.UUID, owner string, p Pet) *schema.Pet {
	res := &schema.Pet{
		ID:       gnuuid.New("pet:" + owner + ":" + p.Name),
		ClientID: client,
		Name:     p.Name,
		Species:  p.Species,
		Breed:    optional(p.Breed),
		Gender:   p.Gender,
		IsActive: true,
	}
	if res.Gender == "" {
		res.Gender = schema.GenderUnknown
	}
	if p.BirthDate != "" {
		// checked by ParseFixtures
		d, _ := time.Parse(time.DateOnly, p.BirthDate)
		res.BirthDate = &d
	}
	if p.Weight > 0 {
		w := p.Weight
		res.Weight = &w
	}
	return res
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
