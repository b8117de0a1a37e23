package bdd

import (
	"os"
	"testing"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/jobshop-sim/test/bdd/steps"
	"github.com/andrescamacho/jobshop-sim/test/helpers"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/domain", "features/application"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	steps.InitializeCatalogScenario(sc)
	steps.InitializeEnvironmentScenario(sc)
	// NOTE: episode steps rely on the shared database opened in TestMain
	steps.InitializeEpisodeScenario(sc)
}

func TestMain(m *testing.M) {
	if err := helpers.InitializeSharedTestDB(); err != nil {
		panic("failed to initialize shared test database: " + err.Error())
	}

	code := m.Run()

	_ = helpers.CloseSharedTestDB()
	os.Exit(code)
}
