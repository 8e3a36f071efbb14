package main

import (
	"encoding/json"
	"io"
	"runtime/debug"

	"github.com/xaionaro-go/screenrecorder/pkg/buildvars"
)

type buildVars struct {
	Version   string `json:",omitempty"`
	GitCommit string `json:",omitempty"`
	BuildDate string `json:",omitempty"`
}

type buildInfo struct {
	BuildVars *buildVars       `json:",omitempty"`
	BuildInfo *debug.BuildInfo `json:",omitempty"`
}

func getBuildInfo() buildInfo {
	result := buildInfo{
		BuildVars: &buildVars{
			Version:   buildvars.Version,
			GitCommit: buildvars.GitCommit,
		},
	}
	if buildvars.BuildDate != nil {
		result.BuildVars.BuildDate = buildvars.BuildDate.UTC().Format("2006-01-02T15:04:05Z")
	}
	if *result.BuildVars == (buildVars{}) {
		result.BuildVars = nil
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return result
	}
	for idx, setting := range bi.Settings {
		if setting.Key == "-ldflags" {
			bi.Settings[idx].Value = "***"
		}
	}
	result.BuildInfo = bi
	return result
}

func printBuildInfo(out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(getBuildInfo())
}
