// pkg/aiclient/architect.go
package aiclient

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rowmend/rowmend/pkg/dataset"
	"github.com/rowmend/rowmend/pkg/parse"
)

// RunArchitect sends a dataset sample to the AI for schema inference and a
// full-row rewrite, persists the raw response in the work directory, and
// returns the response text. The stored response is the artifact the mapping
// resolver and the reconciliation stage consume.
func (c *Client) RunArchitect(ctx context.Context, table *dataset.Table, workDir, responseFile string) (string, error) {
	sample := table.Sample(c.cfg.SampleRows).WithSyntheticID()
	sampleCSV, err := dataset.MarshalCSV(sample)
	if err != nil {
		return "", fmt.Errorf("failed to serialize sample: %w", err)
	}

	c.logger.Info("Requesting schema design",
		zap.Int("sampleRows", len(sample.Rows)),
		zap.Int("columns", len(table.Headers)))

	response, err := c.generate(ctx, architectPrompt(sampleCSV))
	if err != nil {
		return "", err
	}

	// The resolver reads the original headers back out of the response's
	// <user_data> block. Models occasionally drop the echo, so restore it
	// from our own sample rather than failing the whole run.
	if !parse.HasBlock(response, parse.TagUserData) {
		c.logger.Warn("Architect response did not echo user data, appending original sample")
		response = response + "\n<" + parse.TagUserData + ">\n" + sampleCSV + "</" + parse.TagUserData + ">\n"
	}

	path := filepath.Join(workDir, responseFile)
	if err := os.WriteFile(path, []byte(response), 0644); err != nil {
		return "", fmt.Errorf("failed to persist architect response %s: %w", path, err)
	}

	c.logger.Info("Architect response persisted", zap.String("path", path))
	return response, nil
}
