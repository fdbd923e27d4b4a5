package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ocdsmap.dev/pkg/ocdsmap/internal/adapter"
	"ocdsmap.dev/pkg/ocdsmap/internal/domain"
	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
)

var runOutputFlag string
var runPackageFlag bool
var runPrefixFlag string
var runForcePublishFlag bool
var runCodelistFlag []string
var runMetricsFileFlag string
var runBufferFlag int
var runShardFlag string

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Map rows into OCDS releases",
		Long:  runLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			shardIndex, totalShards := parseShardFlag(runShardFlag)

			return workflow.Run(cmd.Context(), domain.RunArgs{
				Template:  viper.GetString(mappingFileConfigKey),
				Codelists: viper.GetStringSlice(codelistsConfigKey),
				Source:    sourceArgs(),
				Output: adapter.OutputSpec{
					Directory: viper.GetString(outputDirConfigKey),
					Package:   viper.GetBool(outputPackageConfigKey),
					Meta:      publishingMeta(),
					SpillDir:  viper.GetString(spillDirConfigKey),
				},
				Options: domain.Options{
					OCIDPrefix:       viper.GetString(ocidPrefixConfigKey),
					ForcePublish:     viper.GetBool(forcePublishConfigKey),
					CodelistFallback: viper.GetStringSlice(codelistFallbackConfigKey),
					SlotArrays:       viper.GetStringSlice(slotArraysConfigKey),
					Shard:            domain.Shard{Index: shardIndex, Total: totalShards},
				},
				Buffer:      viper.GetInt(runBufferConfigKey),
				MetricsFile: viper.GetString(metricsFileConfigKey),
			})
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringVarP(&runOutputFlag, outputFlagName, "o", viper.GetString(outputDirConfigKey), "output directory for the release package")
	bindFlagToConfig(flags.Lookup(outputFlagName), outputDirConfigKey)

	flags.BoolVar(&runPackageFlag, packageFlagName, viper.GetBool(outputPackageConfigKey), "wrap releases in a release package envelope")
	bindFlagToConfig(flags.Lookup(packageFlagName), outputPackageConfigKey)

	flags.StringVarP(&runPrefixFlag, prefixFlagName, "p", viper.GetString(ocidPrefixConfigKey), "OCID prefix prepended to every business key")
	bindFlagToConfig(flags.Lookup(prefixFlagName), ocidPrefixConfigKey)

	flags.BoolVar(&runForcePublishFlag, forcePublishFlagName, viper.GetBool(forcePublishConfigKey), "map columns whose data element is not marked for publication")
	bindFlagToConfig(flags.Lookup(forcePublishFlagName), forcePublishConfigKey)

	flags.StringArrayVar(&runCodelistFlag, codelistFlagName, viper.GetStringSlice(codelistsConfigKey), "codelist file (.yaml or .xlsx); can be repeated")
	bindFlagToConfig(flags.Lookup(codelistFlagName), codelistsConfigKey)

	flags.StringVar(&runMetricsFileFlag, metricsFileFlagName, viper.GetString(metricsFileConfigKey), "write run metrics in Prometheus textfile format")
	bindFlagToConfig(flags.Lookup(metricsFileFlagName), metricsFileConfigKey)

	flags.IntVar(&runBufferFlag, bufferFlagName, viper.GetInt(runBufferConfigKey), "releases queued between mapping and writing")
	bindFlagToConfig(flags.Lookup(bufferFlagName), runBufferConfigKey)

	flags.StringVarP(&runShardFlag, shardFlagName, "s", "", "shard index and total shard count in the format INDEX/TOTAL (e.g., 0/3)")
}

func parseShardFlag(shard string) (int, int) {
	if shard == "" {
		return 0, 1
	}

	var index, total int

	_, err := fmt.Sscanf(shard, "%d/%d", &index, &total)
	if err != nil || total <= 0 || index < 0 || index >= total {
		return 0, 1
	}

	return index, total
}

func sourceArgs() domain.SourceArgs {
	return domain.SourceArgs{
		Driver:     viper.GetString(driverConfigKey),
		Connection: viper.GetString(connectionConfigKey),
		Selector:   viper.GetString(selectorConfigKey),
	}
}

// publishingMeta reads the package envelope key by key so env overrides apply
// to nested publisher settings.
func publishingMeta() m.PackageMeta {
	key := func(name string) string { return publishingConfigKey + "." + name }

	return m.PackageMeta{
		URI:     viper.GetString(key("uri")),
		Version: viper.GetString(key("version")),
		Publisher: m.Publisher{
			Name:   viper.GetString(key("publisher.name")),
			Scheme: viper.GetString(key("publisher.scheme")),
			UID:    viper.GetString(key("publisher.uid")),
			URI:    viper.GetString(key("publisher.uri")),
		},
		License:           viper.GetString(key("license")),
		PublicationPolicy: viper.GetString(key("publication_policy")),
		Extensions:        viper.GetStringSlice(key("extensions")),
	}
}
