// Package main provides the vetdb CLI application.
// vetdb migrates and deploys the veterinary clinic PostgreSQL schema.
package main

import "github.com/vetcare/vetdb/cmd"

func main() {
	cmd.Execute()
}
