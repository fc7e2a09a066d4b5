package axml

import (
	"encoding/xml"

	"github.com/pkg/errors"
)

// ManifestInfo is the well-known metadata lifted from a decoded manifest.
type ManifestInfo struct {
	Package      string
	VersionCode  string
	VersionName  string
	MinSdk       string
	TargetSdk    string
	Label        string
	AppName      string
	Icon         string
	Permissions  []string
	MainActivity string
}

type manifestDoc struct {
	Package     string `xml:"package,attr"`
	VersionCode string `xml:"versionCode,attr"`
	VersionName string `xml:"versionName,attr"`
	UsesSdk     struct {
		MinSdkVersion    string `xml:"minSdkVersion,attr"`
		TargetSdkVersion string `xml:"targetSdkVersion,attr"`
	} `xml:"uses-sdk"`
	Application struct {
		Label      string `xml:"label,attr"`
		Name       string `xml:"name,attr"`
		Icon       string `xml:"icon,attr"`
		Activities []struct {
			Name          string `xml:"name,attr"`
			IntentFilters []struct {
				Actions []struct {
					Name string `xml:"name,attr"`
				} `xml:"action"`
				Categories []struct {
					Name string `xml:"name,attr"`
				} `xml:"category"`
			} `xml:"intent-filter"`
		} `xml:"activity"`
	} `xml:"application"`
	Permissions []struct {
		Name string `xml:"name,attr"`
	} `xml:"uses-permission"`
}

const (
	actionMain       = "android.intent.action.MAIN"
	categoryLauncher = "android.intent.category.LAUNCHER"
)

// ParseManifestInfo reads the XML text produced by DecodeManifest with a
// standard namespace-aware reader and lifts the common fields.
func ParseManifestInfo(manifestXml string) (*ManifestInfo, error) {
	if manifestXml == "" {
		return nil, ErrInvalidArgument
	}

	var doc manifestDoc
	if err := xml.Unmarshal([]byte(manifestXml), &doc); err != nil {
		return nil, errors.Wrap(err, "parsing manifest text")
	}

	info := &ManifestInfo{
		Package:     doc.Package,
		VersionCode: doc.VersionCode,
		VersionName: doc.VersionName,
		MinSdk:      doc.UsesSdk.MinSdkVersion,
		TargetSdk:   doc.UsesSdk.TargetSdkVersion,
		Label:       doc.Application.Label,
		AppName:     doc.Application.Name,
		Icon:        doc.Application.Icon,
	}
	for _, p := range doc.Permissions {
		info.Permissions = append(info.Permissions, p.Name)
	}

	for _, act := range doc.Application.Activities {
		for _, filter := range act.IntentFilters {
			hasMain, hasLauncher := false, false
			for _, a := range filter.Actions {
				if a.Name == actionMain {
					hasMain = true
				}
			}
			for _, c := range filter.Categories {
				if c.Name == categoryLauncher {
					hasLauncher = true
				}
			}
			if hasMain && hasLauncher {
				info.MainActivity = act.Name
				return info, nil
			}
		}
	}
	return info, nil
}
