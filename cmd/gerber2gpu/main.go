package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/dsafdsaf132/gerber2gpu/configurator"
	"github.com/dsafdsaf132/gerber2gpu/gerbparser"
)

var verboseLevel = flag.Int("v", 3, "verbose level: 0 - minimal, 3 - maximal")

// configuration base
var viperConfig *viper.Viper

func main() {

	fmt.Println(returnAppInfo(*verboseLevel))

	viperConfig = viper.New()
	configurator.SetDefaults(viperConfig)

	cfgFileError := configurator.ProcessConfigFile(viperConfig)
	if cfgFileError != nil {
		fmt.Print("An error has occured: ")
		fmt.Println(cfgFileError)
		fmt.Println("Using built-in defaults.")
	}

	var sourceFileName string
	flag.StringVar(&sourceFileName, "i", "", "input file")
	flag.Parse()
	if len(sourceFileName) == 0 {
		fmt.Println("No input file specified.\nUsage:")
		flag.PrintDefaults()
		os.Exit(-1)
	}
	timeStamp := time.Now()
	timeInfo(timeStamp)
	fmt.Println("input file:", sourceFileName)

	printMemUsage("Memory usage before reading input file:")

	source, err := os.ReadFile(sourceFileName)
	checkError(err, -1)

	proc := gerbparser.NewProcessor(gerbparser.Config{
		ArcRadiusTolerance: viperConfig.GetFloat64(configurator.CfgParserArcRadiusTolerance),
		CircleSegments:     viperConfig.GetInt(configurator.CfgParserCircleSegments),
	})

	timeInfo(timeStamp)
	fmt.Println("Geometry resolution started")

	id, warnings, err := proc.AddLayer(source)
	checkError(err, 300)

	if viperConfig.GetBool(configurator.CfgCommonPrintWarnings) {
		for _, w := range warnings {
			fmt.Println(w.String())
		}
		fmt.Println("Total", len(warnings), "warnings.")
	}

	timeInfo(timeStamp)
	fmt.Println("Geometry resolution finished")
	printMemUsage("Memory usage after geometry resolution:")

	layer := proc.Layers()[0]
	data := layer.Data

	if viperConfig.GetBool(configurator.CfgCommonPrintStatistic) {
		fmt.Println("Layer", id, "statistics:")
		fmt.Println("\t", len(data.Triangles.Polarity), "triangles")
		fmt.Println("\t", len(data.Circles.X), "circles")
		fmt.Println("\t", len(data.Arcs.X), "arcs")
		fmt.Println("\t", len(data.Thermals.X), "thermals")
		fmt.Println("\t boundary", data.Boundary.String())
	}

	outFile := viperConfig.GetString(configurator.CfgOutputJSONFile)
	if len(outFile) > 0 {
		timeInfo(timeStamp)
		fmt.Println("Saving primitive buffers to", outFile)
		encoded, err := json.Marshal(data)
		checkError(err, 400)
		checkError(os.WriteFile(outFile, encoded, 0600), 401)
		printMemUsage("Memory usage after json encoding:")
	}

	timeInfo(timeStamp)
	fmt.Println("Exiting")
}

////////////////////////////////////////////////////// end of main ///////////////////////////////////////////////////

func checkError(err error, exitCode int) {
	if err != nil {
		fmt.Println(err)
		os.Exit(exitCode)
	}
}

// this function returns application info
func returnAppInfo(verbLevel int) string {
	var header = "Gerber to GPU primitive buffers converter\n"
	var version = "Version 0.1.0\n"
	var progDate = "30-Aug-2026\n"
	var retVal = "\n"
	switch verbLevel {
	case 3:
		retVal = header + version + progDate
	case 2:
		retVal = header + version
	case 1:
		retVal = header
	default:
		retVal = "\n"
	}
	return retVal
}

// PrintMemUsage outputs the current, total and OS memory being used. As well as the number
// of garbage collection cycles completed.
func printMemUsage(header string) {
	if viperConfig.GetBool(configurator.CfgCommonPrintMemoryInfo) == false {
		return
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	// For info on each, see: https://golang.org/pkg/runtime/#MemStats
	fmt.Println(header)
	fmt.Printf("Alloc = %v KB", bToKb(memStats.Alloc))
	fmt.Printf("\tTotalAlloc = %v KB", bToKb(memStats.TotalAlloc))
	fmt.Printf("\tSys = %v KB", bToKb(memStats.Sys))
	fmt.Printf("\tNumGC = %v\n", memStats.NumGC)
}

func bToKb(b uint64) uint64 {
	return b / 1024
}

func timeInfo(prev time.Time) {
	now := time.Now()
	elapsed := time.Since(prev)
	/*
		"[23:59:04 +2.00001] "
	*/
	out := "["
	hr := strconv.Itoa(now.Hour())
	if len(hr) == 1 {
		hr = "0" + hr
	}
	min := strconv.Itoa(now.Minute())
	if len(min) == 1 {
		min = "0" + min
	}
	sec := strconv.Itoa(now.Second())
	if len(sec) == 1 {
		sec = "0" + sec
	}

	out = out + hr + ":" + min + ":" + sec + " +"
	elapsedSec := (float64(elapsed.Nanoseconds() / (1000 * 1000))) / 1000.0
	out = out + strconv.FormatFloat(elapsedSec, 'f', 3, 64) + "] "
	fmt.Print(out)
}

/* ########################################## EOF #########################################################*/
