//go:build mage

// Package main provides build targets for dsindex using Mage.
//
// Usage:
//
//	mage build       Compile the dsindex binary to bin/
//	mage buildCgo    Compile with the mattn/go-sqlite3 driver enabled (FTS5)
//	mage test        Run all tests
//	mage testCgo     Run all tests with the sqlite_fts5 build tag
//	mage lint        Run golangci-lint
//	mage index       Build and index the current directory
//	mage clean       Remove build artifacts
//	mage install     Install dsindex to GOPATH/bin
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "dsindex"
	binaryDir  = "bin"
	cmdDir     = "./cmd/dsindex"
	cliPkg     = "github.com/mvp-joe/dsindex/internal/cli"

	// fts5Tag compiles FTS5 into mattn/go-sqlite3 for the sqlite3 driver.
	fts5Tag = "sqlite_fts5"
)

// ldflags stamps version information into the cli package.
func ldflags() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		commit = "none"
	}
	return fmt.Sprintf("-X %s.Version=%s -X %s.GitCommit=%s -X %s.BuildDate=%s",
		cliPkg, version, cliPkg, commit, cliPkg, time.Now().UTC().Format(time.RFC3339))
}

// Build compiles the dsindex binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// BuildCgo compiles the binary with FTS5 enabled in the cgo sqlite3 driver.
func BuildCgo() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "1"},
		"go", "build", "-tags", fts5Tag, "-ldflags", ldflags(), "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// TestCgo runs all tests with the sqlite_fts5 tag, covering the sqlite3 driver.
func TestCgo() error {
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "1"}, "go", "test", "-tags", fts5Tag, "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Index builds the binary and indexes the current directory.
func Index() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binaryDir, binaryName), "index")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV("go", "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(gopath, "bin", binaryName), filepath.Join(binaryDir, binaryName))
}
