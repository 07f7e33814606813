package service

import (
	"os"
	"testing"

	"github.com/emrgen/research/internal/tester"
)

func TestMain(m *testing.M) {
	tester.Setup()
	code := m.Run()

	os.Exit(code)
}
