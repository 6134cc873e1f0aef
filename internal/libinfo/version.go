/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package libinfo provides the version of the docsubmit module linked into the binary.
package libinfo

import (
	"debug/buildinfo"
	"regexp"
	"runtime/debug"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const libShortName = "docsubmit"

const moduleName = "github.com/crptkit/" + libShortName

const unknownVersion = "v0.0.0"

// PrometheusLibVersionLabel is a constant label added to the metrics of the module.
const PrometheusLibVersionLabel = "docsubmit_version"

// PrometheusConstLabels returns constant labels with the module version.
func PrometheusConstLabels() prometheus.Labels {
	return prometheus.Labels{PrometheusLibVersionLabel: GetLibVersion()}
}

// UserAgent returns "docsubmit/<version>".
func UserAgent() string {
	return libShortName + "/" + GetLibVersion()
}

var libVersion string
var libVersionOnce sync.Once

// GetLibVersion returns the version of the module, or v0.0.0 if it's unknown (e.g. in tests).
func GetLibVersion() string {
	libVersionOnce.Do(initLibVersion)
	return libVersion
}

func initLibVersion() {
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		libVersion = extractLibVersion(buildInfo, moduleName)
	}
	if libVersion == "" {
		libVersion = unknownVersion
	}
}

// extractLibVersion extracts the version of the given module from the build info.
// The module may be required with a major version suffix ("/vX").
func extractLibVersion(buildInfo *buildinfo.BuildInfo, modName string) string {
	if buildInfo == nil {
		return ""
	}
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(modName) + `(/v[0-9]+)?$`)
	for _, dep := range buildInfo.Deps {
		if re.MatchString(dep.Path) {
			return dep.Version
		}
	}
	return ""
}
