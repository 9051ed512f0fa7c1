package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/go-errors/errors"
	"github.com/integrii/flaggy"
	"github.com/jesseduffield/yaml"
	"github.com/samber/lo"

	"github.com/nkamau/osched/pkg/app"
	"github.com/nkamau/osched/pkg/comparator"
	"github.com/nkamau/osched/pkg/config"
	"github.com/nkamau/osched/pkg/procsim"
	"github.com/nkamau/osched/pkg/utils"
)

const DEFAULT_VERSION = "unversioned"

var (
	commit      string
	version     = DEFAULT_VERSION
	date        string
	buildSource = "unknown"

	configFlag    = false
	debuggingFlag = false

	policyFlag      = config.PolicyFCFS
	processCount    = 5
	ticksFlag       = 200
	seedFlag        = 1
	compareFlag     = false
	compareModeFlag = string(comparator.ModeThroughput)
)

func main() {
	updateBuildInfo()

	info := fmt.Sprintf(
		"%s\nDate: %s\nBuildSource: %s\nCommit: %s\nOS: %s\nArch: %s",
		version,
		date,
		buildSource,
		commit,
		runtime.GOOS,
		runtime.GOARCH,
	)

	flaggy.SetName("osched")
	flaggy.SetDescription("A headless OS process-scheduling and paging simulator")
	flaggy.DefaultParser.AdditionalHelpPrepend = "https://github.com/nkamau/osched"

	flaggy.Bool(&configFlag, "c", "config", "Print the current default config")
	flaggy.Bool(&debuggingFlag, "d", "debug", "a boolean")
	flaggy.String(&policyFlag, "p", "policy", "Scheduling policy: FCFS, SJF, PRIORITY-NP, PRIORITY-P, RR, MLQ")
	flaggy.Int(&processCount, "n", "workload", "Number of processes in the generated workload")
	flaggy.Int(&ticksFlag, "t", "ticks", "Maximum ticks to simulate before giving up")
	flaggy.Int(&seedFlag, "s", "seed", "Workload random seed")
	flaggy.Bool(&compareFlag, "x", "compare", "Run every policy against the same workload and rank them")
	flaggy.String(&compareModeFlag, "m", "mode", "Comparator scoring mode: throughput, responsiveness, fairness")
	flaggy.SetVersion(info)

	flaggy.Parse()

	if configFlag {
		var buf bytes.Buffer
		encoder := yaml.NewEncoder(&buf)
		defaults := config.DefaultSimConfig()
		if err := encoder.Encode(&defaults); err != nil {
			log.Fatal(err.Error())
		}
		fmt.Printf("%v\n", buf.String())
		os.Exit(0)
	}

	appConfig, err := config.NewAppConfig("osched", version, commit, date, buildSource, debuggingFlag)
	if err != nil {
		log.Fatal(err.Error())
	}

	a, err := app.NewApp(appConfig)
	if err == nil {
		err = run(a)
	}
	a.Close()

	if err != nil {
		if errMessage, known := a.KnownError(err); known {
			log.Println(errMessage)
			os.Exit(0)
		}

		newErr := errors.Wrap(err, 0)
		stackTrace := newErr.ErrorStack()
		a.Log.Error(stackTrace)

		log.Fatalf("simulation failed\n\n%s", stackTrace)
	}
}

// run drives one headless simulation (or comparator run) to completion
// and prints a summary, the role a TUI's status bar would otherwise
// play.
func run(a *app.App) error {
	workload := procsim.GenerateWorkload(procsim.DefaultWorkloadSpec(int64(seedFlag), processCount))
	cfg := *a.Config.SimConfig
	cfg.Policy = policyFlag

	if compareFlag {
		return runCompare(a, cfg, workload)
	}
	return runSingle(a, cfg, workload)
}

func runSingle(a *app.App, cfg config.SimConfig, workload []procsim.Descriptor) error {
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

	snap, err := a.Session.CurrentSnapshot()
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runCompare(a *app.App, cfg config.SimConfig, workload []procsim.Descriptor) error {
	policies := []string{
		config.PolicyFCFS, config.PolicySJF, config.PolicyPriorityNP,
		config.PolicyPriorityP, config.PolicyRR, config.PolicyMLQ,
	}
	results, err := comparator.Run(a.Log, cfg, workload, policies, ticksFlag)
	if err != nil {
		return err
	}
	report := comparator.Score(results, comparator.Mode(compareModeFlag), workload)

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func updateBuildInfo() {
	if version == DEFAULT_VERSION {
		if buildInfo, ok := debug.ReadBuildInfo(); ok {
			revision, ok := lo.Find(buildInfo.Settings, func(setting debug.BuildSetting) bool {
				return setting.Key == "vcs.revision"
			})
			if ok {
				commit = revision.Value
				// if osched was built from source we'll show the version as the
				// abbreviated commit hash
				version = utils.SafeTruncate(revision.Value, 7)
			}

			// if version hasn't been set we assume that neither has the date
			vcsTime, ok := lo.Find(buildInfo.Settings, func(setting debug.BuildSetting) bool {
				return setting.Key == "vcs.time"
			})
			if ok {
				date = vcsTime.Value
			}
		}
	}
}
