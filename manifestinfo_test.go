package axml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifestXml = `<?xml version="1.0" encoding="utf-8"?>
<manifest xmlns:android="http://schemas.android.com/apk/res/android" package="com.example.demo" android:versionCode="42" android:versionName="1.2.3">
	<uses-sdk android:minSdkVersion="21" android:targetSdkVersion="34" />
	<uses-permission android:name="android.permission.INTERNET" />
	<uses-permission android:name="android.permission.CAMERA" />
	<application android:label="Demo" android:name=".DemoApp" android:icon="@mipmap/ic_launcher">
		<activity android:name=".SettingsActivity" />
		<activity android:name=".MainActivity">
			<intent-filter>
				<action android:name="android.intent.action.MAIN" />
				<category android:name="android.intent.category.LAUNCHER" />
			</intent-filter>
		</activity>
	</application>
</manifest>
`

func TestParseManifestInfo(t *testing.T) {
	info, err := ParseManifestInfo(sampleManifestXml)
	require.NoError(t, err)

	assert.Equal(t, "com.example.demo", info.Package)
	assert.Equal(t, "42", info.VersionCode)
	assert.Equal(t, "1.2.3", info.VersionName)
	assert.Equal(t, "21", info.MinSdk)
	assert.Equal(t, "34", info.TargetSdk)
	assert.Equal(t, "Demo", info.Label)
	assert.Equal(t, ".DemoApp", info.AppName)
	assert.Equal(t, "@mipmap/ic_launcher", info.Icon)
	assert.Equal(t, ".MainActivity", info.MainActivity)
	assert.Equal(t, []string{
		"android.permission.INTERNET",
		"android.permission.CAMERA",
	}, info.Permissions)
}

func TestParseManifestInfoEmpty(t *testing.T) {
	_, err := ParseManifestInfo("")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ParseManifestInfo("not xml at all <<<")
	assert.Error(t, err)
}

// The decoder's own output must round-trip through the metadata reader.
func TestParseManifestInfoFromDecodedOutput(t *testing.T) {
	pool := buildStringPool(false, []string{
		"android",         // 0
		androidNsURI,      // 1
		"manifest",        // 2
		"package",         // 3
		"org.round.trip",  // 4
		"uses-permission", // 5
		"name",            // 6
		"android.permission.NFC", // 7
	}, nil)

	doc := buildXmlDoc(
		pool,
		buildNsStart(0, 1),
		buildStartElement(missingString, 2,
			attrRec{ns: missingString, name: 3, raw: 4, dataType: TypeString, data: 4},
		),
		buildStartElement(missingString, 5,
			attrRec{ns: 1, name: 6, raw: 7, dataType: TypeString, data: 7},
		),
		buildEndElement(missingString, 5),
		buildEndElement(missingString, 2),
		buildNsEnd(0, 1),
	)

	xmlText, err := DecodeManifest(doc, nil, Options{})
	require.NoError(t, err)

	info, err := ParseManifestInfo(xmlText)
	require.NoError(t, err)
	assert.Equal(t, "org.round.trip", info.Package)
	assert.Equal(t, []string{"android.permission.NFC"}, info.Permissions)
}
