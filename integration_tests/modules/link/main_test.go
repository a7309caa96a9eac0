package linkintegrationtests

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"

	"github.com/Black-And-White-Club/elo-bot/integration_tests/testutils"
)

var testEnv *testutils.TestEnvironment

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		log.Println("Skipping link integration tests in short mode")
		os.Exit(0)
	}

	env, err := testutils.NewTestEnvironment(context.Background())
	if err != nil {
		log.Fatalf("Failed to set up test environment: %v", err)
	}
	testEnv = env

	code := m.Run()
	env.Cleanup()
	os.Exit(code)
}
