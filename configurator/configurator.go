// Package configurator holds the viper keys and defaults of the
// application config file (config.toml in the working directory).
package configurator

import (
	"fmt"

	"github.com/spf13/viper"
)

const (
	CfgCommonPrintMemoryInfo string = "common.PrintMemoryInfo"
	CfgCommonPrintStatistic  string = "common.PrintStatistic"
	CfgCommonPrintWarnings   string = "common.PrintWarnings"

	CfgParserArcRadiusTolerance string = "parser.ArcRadiusTolerance"
	CfgParserCircleSegments     string = "parser.CircleSegments"

	CfgOutputJSONFile string = "output.JSONFile"
)

func SetDefaults(v *viper.Viper) {
	v.SetConfigName("config") // no need to include file extension
	v.AddConfigPath(".")      // set the path of your config file
	v.SetConfigType("toml")

	// diagnostic messages
	v.SetDefault(CfgCommonPrintMemoryInfo, false)
	v.SetDefault(CfgCommonPrintStatistic, true)
	v.SetDefault(CfgCommonPrintWarnings, true)

	// geometry resolution
	v.SetDefault(CfgParserArcRadiusTolerance, 0.001)
	v.SetDefault(CfgParserCircleSegments, 36)

	// empty means no file is written
	v.SetDefault(CfgOutputJSONFile, "")
}

// ProcessConfigFile reads the config file; the caller decides whether a
// missing file is fatal, the defaults remain usable either way.
func ProcessConfigFile(v *viper.Viper) error {
	return v.ReadInConfig()
}

func DiagnosticAllCfgPrint(v *viper.Viper) {
	c := v.AllSettings()
	for key, data := range c {
		fmt.Println(key, ":", data)
	}
	fmt.Println()
}
