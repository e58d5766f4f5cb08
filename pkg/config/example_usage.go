package config

// Example usage of the configuration system:
//
// 1. Load configuration with all sources:
//
//     cfg, err := config.Load("", nil)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 2. Load with custom config file:
//
//     cfg, err := config.Load("/path/to/config.yaml", nil)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 3. Load with command line flags:
//
//     flags := map[string]interface{}{
//         "token":       "your-robotevents-token",
//         "seasons":     "181,190",
//         "concurrency": 6,
//         "output":      "./my-ratings",
//         "log-level":   "debug",
//     }
//     cfg, err := config.Load("", flags)
//
// 4. Programmatic configuration:
//
//     cfg := config.DefaultConfig()
//     cfg.API.Token = "your-robotevents-token"
//     cfg.Harvest.SeasonFilter = "Spin Up"
//
//     if err := cfg.Validate(); err != nil {
//         log.Fatal(err)
//     }
//
// 5. Save configuration to file:
//
//     if err := cfg.Save(".vexrank.yaml"); err != nil {
//         log.Fatal(err)
//     }
//
// 6. Environment variables:
//
//     export VEXRANK_TOKEN="your-robotevents-token"
//     export VEXRANK_PROGRAM_ID="1"
//     export VEXRANK_REQUEST_INTERVAL="1.5s"
//     export VEXRANK_SEASONS="181,190"
//     export VEXRANK_CONCURRENCY="4"
//     export VEXRANK_OUTPUT_DIR="./ratings"
//     export VEXRANK_LOG_LEVEL="debug"
