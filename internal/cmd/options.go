package cmd

import (
	"github.com/wethinkt/go-csvview/internal/config"
	"github.com/wethinkt/go-csvview/internal/dataset"
	"github.com/wethinkt/go-csvview/internal/workspace"
)

func datasetOptions(c config.Config) dataset.Options {
	return dataset.Options{
		Delimiter: c.Ingest.DelimiterRune(),
		MaxRows:   c.Ingest.MaxRows,
	}
}

func workspaceOptions(c config.Config) workspace.Options {
	return workspace.Options{
		Workers:   c.Engine.WorkerCount(),
		Overscan:  c.View.Overscan,
		Load:      datasetOptions(c),
		MaxUnique: c.Profile.MaxUnique,
	}
}
