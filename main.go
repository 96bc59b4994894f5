package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/config"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/debugServer"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/emulator"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/exprcheck"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/monitor"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/util"
)

const (
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorReset = "\033[0m"
)

func main() {
	conf := config.Get()
	util.LoggingEnabled = conf.DebugLog
	util.LogEndpoint = conf.LogEndpoint

	args := os.Args[1:]
	if len(args) >= 1 && args[0] == "debug" {
		// listen for debugger requests over the stdin/out pipe
		util.LoggingEnabled = true
		debugServer.NewServer(newMonitor(conf)).ListenAndServe()
	} else if len(args) >= 1 && args[0] == "serve" {
		addr := conf.ListenAddr
		if len(args) >= 2 {
			addr = args[1]
		}
		if err := debugServer.NewServer(newMonitor(conf)).ListenAndServeTCP(addr); err != nil {
			log.Fatalln(err)
		}
	} else if len(args) >= 1 && args[0] == "web" {
		addr := conf.WebAddr
		if len(args) >= 2 {
			addr = args[1]
		}
		if err := debugServer.NewServer(newMonitor(conf)).ListenAndServeWeb(addr); err != nil {
			log.Fatalln(err)
		}
	} else if len(args) >= 2 && args[0] == "gen-expr" {
		generateCases(args[1:])
	} else if len(args) >= 2 && args[0] == "check-expr" {
		checkCases(args[1:])
	} else if len(args) <= 2 {
		if len(args) >= 1 && args[0] == "-b" {
			conf.Batch = true
			args = args[1:]
		}
		if len(args) > 1 {
			log.Fatalln("Invalid arguments:", os.Args)
		} else if len(args) == 1 {
			conf.ImagePath = args[0]
		}
		runMonitor(conf)
	} else {
		log.Fatalln("Invalid arguments:", os.Args)
	}
}

func newMonitor(conf *config.Config) *monitor.Monitor {
	mem := emulator.NewMemoryImage()
	img, err := emulator.LoadImage(mem, conf.ImagePath, conf.ImageFormat, conf.ResetVector)
	if err != nil {
		log.Fatalln("Could not load image:", err)
	}

	inst := emulator.NewEmulator(emulator.EmulatorConfig{
		Memory:       mem,
		MemoryBase:   emulator.DefaultMemoryBase,
		MemorySize:   conf.MemorySize,
		ResetVector:  img.Entry,
		RuntimeLimit: conf.RuntimeLimit,
		RuntimeErrorCallback: func(e emulator.RuntimeException) {
			util.LogF("runtime exception: %v", e.Error())
		},
	})
	return monitor.New(inst)
}

func runMonitor(conf *config.Config) {
	m := newMonitor(conf)

	var err error
	if conf.Batch {
		err = m.RunBatch(os.Stdout)
	} else {
		err = m.RunREPL(conf.HistoryFile)
	}
	if err != nil {
		log.Println(err)
	}

	if m.Bad() {
		os.Exit(1)
	}
}

func generateCases(args []string) {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		log.Fatalf("Invalid case count %q", args[0])
	}

	seed := time.Now().UnixNano()
	if len(args) >= 2 {
		seed, err = strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			log.Fatalf("Invalid seed %q", args[1])
		}
	}

	if err := exprcheck.NewGenerator(seed).WriteCases(os.Stdout, n); err != nil {
		log.Fatalln(err)
	}
}

func checkCases(args []string) {
	f, err := os.Open(args[0])
	if err != nil {
		log.Fatalf("Could not read file %s: %v", args[0], err)
	}
	cases, err := exprcheck.ReadCases(f)
	f.Close()
	if err != nil {
		log.Fatalln(err)
	}

	// the generated expressions only use literals, so a blank machine will do
	inst := emulator.NewEmulator(emulator.EmulatorConfig{ResetVector: emulator.DefaultMemoryBase})
	report := exprcheck.Check(cases, inst)

	for _, test := range report.Tests {
		if test.Status == "passed" {
			continue
		}
		fmt.Printf("%s%s failed%s\n%s", colorRed, test.Name, colorReset, test.Output)
	}
	fmt.Printf("%s%d passed%s, %s%d failed%s\n", colorGreen, report.Passed, colorReset, colorRed, report.Failed, colorReset)

	if len(args) >= 2 {
		if err := report.Save(args[1]); err != nil {
			log.Fatalln(err)
		}
	}
	if report.Failed > 0 {
		os.Exit(1)
	}
}
