//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "greekpron"

// Default target to run when none is specified
var Default = Build

// Build compiles the greekpron binary
func Build() error {
	mg.Deps(Vet)
	return sh.RunV("go", "build", "-o", binary, "./cmd/greekpron")
}

// Test runs all unit tests
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install installs greekpron into GOPATH/bin after the tests pass
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "./cmd/greekpron")
}

// Clean removes the built binary
func Clean() error {
	return sh.Rm(binary)
}
