// axml2xml decodes AndroidManifest.xml and resources.arsc from APKs and
// prints the manifest as readable XML. It can also verify APK signatures.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/apkscope/axml"
	"github.com/avast/apkverifier"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagValues   bool
	flagHumanize bool
	flagLocale   string
)

func main() {
	root := &cobra.Command{
		Use:           "axml2xml",
		Short:         "Decode binary Android manifests and resource tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	manifest := &cobra.Command{
		Use:   "manifest <file.apk|AndroidManifest.xml>",
		Short: "Print the decoded manifest XML",
		Args:  cobra.ExactArgs(1),
		RunE:  runManifest,
	}
	manifest.Flags().BoolVar(&flagValues, "values", false, "resolve references to concrete values")
	manifest.Flags().BoolVar(&flagHumanize, "humanize", false, "map well-known attribute values to symbolic names")
	manifest.Flags().StringVar(&flagLocale, "locale", "", "locale for resource selection, e.g. en-US")

	info := &cobra.Command{
		Use:   "info <file.apk>",
		Short: "Print package metadata from the manifest",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}
	info.Flags().StringVar(&flagLocale, "locale", "", "locale for resource selection, e.g. en-US")

	resources := &cobra.Command{
		Use:   "resources <file.arsc|file.apk>",
		Short: "Parse the resource table and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE:  runResources,
	}

	verify := &cobra.Command{
		Use:   "verify <file.apk>",
		Short: "Verify the APK signature",
		Args:  cobra.ExactArgs(1),
		RunE:  runVerify,
	}

	root.AddCommand(manifest, info, resources, verify)

	if err := root.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func decodeOptions() axml.Options {
	return axml.Options{
		ResolveToValues: flagValues,
		Locale:          flagLocale,
		Humanize:        flagHumanize,
	}
}

func runManifest(cmd *cobra.Command, args []string) error {
	input := args[0]

	if strings.HasSuffix(input, ".apk") {
		xml, resErr, manErr := axml.DecodeApk(input, decodeOptions())
		if resErr != nil {
			logrus.Warnf("resource table not usable, references stay unresolved: %v", resErr)
		}
		if manErr != nil {
			return manErr
		}
		fmt.Print(xml)
		return nil
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	xml, err := axml.DecodeManifest(data, nil, decodeOptions())
	if err != nil {
		return err
	}
	fmt.Print(xml)
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	opts := decodeOptions()
	opts.ResolveToValues = true

	xml, resErr, manErr := axml.DecodeApk(args[0], opts)
	if resErr != nil {
		logrus.Warnf("resource table not usable: %v", resErr)
	}
	if manErr != nil {
		return manErr
	}

	info, err := axml.ParseManifestInfo(xml)
	if err != nil {
		return err
	}

	fmt.Printf("package: %s\n", info.Package)
	fmt.Printf("versionCode: %s\n", info.VersionCode)
	fmt.Printf("versionName: %s\n", info.VersionName)
	fmt.Printf("minSdkVersion: %s\n", info.MinSdk)
	fmt.Printf("targetSdkVersion: %s\n", info.TargetSdk)
	fmt.Printf("label: %s\n", info.Label)
	fmt.Printf("application: %s\n", info.AppName)
	fmt.Printf("icon: %s\n", info.Icon)
	fmt.Printf("mainActivity: %s\n", info.MainActivity)
	for _, p := range info.Permissions {
		fmt.Printf("uses-permission: %s\n", p)
	}
	return nil
}

func runResources(cmd *cobra.Command, args []string) error {
	input := args[0]

	var data []byte
	if strings.HasSuffix(input, ".apk") {
		a, err := axml.OpenApk(input)
		if err != nil {
			return err
		}
		defer a.Close()
		if data, err = a.Resources(); err != nil {
			return err
		}
	} else {
		var err error
		if data, err = os.ReadFile(input); err != nil {
			return err
		}
	}

	table, err := axml.ParseResourceTable(data)
	if err != nil {
		return err
	}
	fmt.Printf("resource ids: %d\n", table.EntryCount())
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	res, err := apkverifier.Verify(args[0], nil)
	if err != nil {
		return err
	}

	fmt.Printf("verification scheme used: v%d\n", res.SigningSchemeId)

	_, picked := apkverifier.PickBestApkCert(res.SignerCerts)
	if picked == nil {
		logrus.Warn("no signing certificate found")
		return nil
	}

	var cinfo apkverifier.CertInfo
	cinfo.Fill(picked)
	fmt.Printf("subject: %s\n", cinfo.Subject)
	fmt.Printf("issuer: %s\n", cinfo.Issuer)
	fmt.Printf("valid from: %s\n", cinfo.ValidFrom)
	fmt.Printf("valid to: %s\n", cinfo.ValidTo)
	fmt.Printf("thumbprint-sha256: %s\n", cinfo.Sha256)
	return nil
}
