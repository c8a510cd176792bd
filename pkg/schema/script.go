package schema

import (
	"slices"

	"github.com/vetcare/vetdb/pkg/ddl"
)

// Tables returns CREATE TABLE statements in dependency order.
func Tables() []ddl.CreateTable {
	models := AllModels()
	res := make([]ddl.CreateTable, len(models))
	for i, m := range models {
		res[i] = TableDDL(m)
	}
	return res
}

// AllIndexes returns CREATE INDEX statements of every table.
func AllIndexes() []ddl.CreateIndex {
	var res []ddl.CreateIndex
	for _, m := range AllModels() {
		res = append(res, IndexDDL(m)...)
	}
	return res
}

// RecreateScript drops every index, table and type of the schema and
// creates them again. It is the script of the first-deploy migration.
func RecreateScript() ddl.Script {
	var res ddl.Script
	idxs := AllIndexes()
	tables := Tables()
	enums := Enums()

	for _, v := range idxs {
		res = append(res, ddl.DropIndex{Name: v.Name})
	}
	for _, v := range slices.Backward(tables) {
		res = append(res, ddl.DropTable{Name: v.Name})
	}
	for _, v := range enums {
		res = append(res, ddl.DropEnum{Name: v.Name})
	}

	res = append(res, ddl.CreateExtension{Name: "pgcrypto"})
	for _, v := range enums {
		res = append(res, v)
	}
	for _, v := range tables {
		res = append(res, v)
	}
	for _, v := range idxs {
		res = append(res, v)
	}
	return res
}
