package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Qualify/internal/assess"
	"github.com/MikeSquared-Agency/Qualify/internal/client"
	"github.com/MikeSquared-Agency/Qualify/internal/intake"
	"github.com/MikeSquared-Agency/Qualify/internal/report"
	"github.com/MikeSquared-Agency/Qualify/internal/scoring"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatHTML = "html"
)

type scoreOptions struct {
	preview bool
	remote  bool
	format  string
}

// scoreOutput is what the score command prints, whichever side computed it.
type scoreOutput struct {
	Result  scoring.ScoreResult        `json:"result"`
	Notices []intake.Notice            `json:"notices,omitempty"`
	Record  *scoring.ApplicationRecord `json:"-"`
	HTML    string                     `json:"-"`
}

func newScoreCmd(a *app) *cobra.Command {
	opts := &scoreOptions{}

	cmd := &cobra.Command{
		Use:   "score FILE",
		Short: "Score a JSON application file (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.format {
			case formatText, formatJSON, formatHTML:
			default:
				return fmt.Errorf("unknown format %q (want text, json or html)", opts.format)
			}

			raw, err := readApplication(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			var out scoreOutput
			if opts.remote {
				out, err = a.scoreRemote(cmd.Context(), raw, opts)
			} else {
				out, err = a.scoreLocal(cmd.Context(), raw, opts)
			}
			if err != nil {
				return err
			}
			return a.printScore(cmd.OutOrStdout(), out, opts.format)
		},
	}
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "lenient scoring: never reject the application")
	cmd.Flags().BoolVar(&opts.remote, "remote", false, "score against the service at client.url")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "output format (text|json|html)")
	return cmd
}

func readApplication(stdin io.Reader, path string) (map[string]any, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open application: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode application: %w", err)
	}
	if raw == nil {
		return nil, errors.New("decode application: not a JSON object")
	}
	return raw, nil
}

func (a *app) scoreLocal(ctx context.Context, raw map[string]any, opts *scoreOptions) (scoreOutput, error) {
	engine, err := a.cfg.Engine()
	if err != nil {
		return scoreOutput{}, err
	}
	assessor := assess.New(engine, nil, a.logger)

	var asm assess.Assessment
	if opts.preview {
		asm, err = assessor.Preview(ctx, raw)
	} else {
		asm, err = assessor.Calculate(ctx, raw)
	}
	if err != nil {
		var ve *scoring.ValidationError
		if errors.As(err, &ve) {
			return scoreOutput{}, fmt.Errorf("%s: %w", engine.Describe(ve), err)
		}
		return scoreOutput{}, err
	}

	out := scoreOutput{Result: asm.Result, Notices: asm.Notices, Record: &asm.Record}
	if opts.format == formatHTML {
		out.HTML, err = report.RenderHTML(asm.Record, asm.Result, a.reportOptions(engine, time.Now()))
		if err != nil {
			return scoreOutput{}, err
		}
	}
	return out, nil
}

func (a *app) scoreRemote(ctx context.Context, raw map[string]any, opts *scoreOptions) (scoreOutput, error) {
	c := client.NewHTTPClient(a.cfg.Client.URL, a.cfg.Client.FallbackURLs, a.cfg.ClientTimeout(), a.cfg.Client.MaxRetries, a.logger)

	var out scoreOutput
	if opts.preview {
		p, err := c.Preview(ctx, raw)
		if err != nil {
			return scoreOutput{}, remoteError(err)
		}
		out = scoreOutput{Result: p.Result, Notices: p.Notices}
	} else {
		// The export route scores leniently, so a rejected application
		// must stop here before any report is rendered.
		calc, err := c.Calculate(ctx, raw)
		if err != nil {
			return scoreOutput{}, remoteError(err)
		}
		out = scoreOutput{Result: calc.ScoreResult, Notices: calc.Notices}
	}

	if opts.format == formatHTML {
		exp, err := c.ExportHTML(ctx, raw)
		if err != nil {
			return scoreOutput{}, remoteError(err)
		}
		out.HTML = exp.HTML
	}
	return out, nil
}

func remoteError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Details != "" {
		return fmt.Errorf("%s: %w", apiErr.Details, err)
	}
	return err
}

func (a *app) reportOptions(engine *scoring.Engine, now time.Time) report.Options {
	return report.Options{
		Language:    engine.Language(),
		Application: a.cfg.Report.Application,
		Version:     a.cfg.Report.Version,
		LegalBase:   a.cfg.Report.LegalBase,
		Decisions:   a.cfg.Report.MinistryDecisions,
		Thresholds:  engine.Thresholds(),
		GeneratedAt: now,
	}
}

func (a *app) printScore(w io.Writer, out scoreOutput, format string) error {
	switch format {
	case formatHTML:
		_, err := io.WriteString(w, out.HTML)
		return err
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		return printResult(w, out)
	}
}
