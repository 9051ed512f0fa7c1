// Command osched-replay runs one simulation to completion through a
// Session exactly like the root osched CLI, then projects the
// recorded run back to an arbitrary past tick via pkg/replay — the
// demo driver for spec.md §4.7's replay contract, distinct from root
// main.go's live headless runner/comparator.
package main

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/integrii/flaggy"

	"github.com/nkamau/osched/pkg/app"
	"github.com/nkamau/osched/pkg/config"
	"github.com/nkamau/osched/pkg/procsim"
	"github.com/nkamau/osched/pkg/replay"
)

var (
	policyFlag   = config.PolicyFCFS
	processCount = 5
	ticksFlag    = 200
	seedFlag     = 1
	atFlag       = -1
)

func main() {
	flaggy.SetName("osched-replay")
	flaggy.SetDescription("Run a simulation to completion and project its recorded state back to a past tick")

	flaggy.String(&policyFlag, "p", "policy", "Scheduling policy: FCFS, SJF, PRIORITY-NP, PRIORITY-P, RR, MLQ")
	flaggy.Int(&processCount, "n", "workload", "Number of processes in the generated workload")
	flaggy.Int(&ticksFlag, "t", "ticks", "Maximum ticks to simulate before giving up")
	flaggy.Int(&seedFlag, "s", "seed", "Workload random seed")
	flaggy.Int(&atFlag, "a", "at", "Tick to replay; defaults to the run's final tick")
	flaggy.Parse()

	if err := run(); err != nil {
		log.Fatal(err.Error())
	}
}

func run() error {
	appConfig, err := config.NewAppConfig("osched-replay", DEFAULT_VERSION, "", "", "unknown", false)
	if err != nil {
		return err
	}

	a, err := app.NewApp(appConfig)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := *a.Config.SimConfig
	cfg.Policy = policyFlag
	workload := procsim.GenerateWorkload(procsim.DefaultWorkloadSpec(int64(seedFlag), processCount))

	if err := a.Session.Init(cfg, workload); err != nil {
		return err
	}
	for i := 0; i < ticksFlag; i++ {
		snap, err := a.Session.CurrentSnapshot()
		if err != nil {
			return err
		}
		if len(snap.Completed) == len(workload) {
			break
		}
		if err := a.Session.Tick(); err != nil {
			return err
		}
	}

	final, err := a.Session.CurrentSnapshot()
	if err != nil {
		return err
	}

	at := atFlag
	if at < 0 {
		at = replay.MaxTick(final)
	}
	projected := replay.Project(final, at)

	out, err := json.MarshalIndent(projected, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

const DEFAULT_VERSION = "unversioned"
