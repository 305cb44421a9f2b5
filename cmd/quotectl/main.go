// quotectl runs the audit and negotiation cores offline.
//
// Usage:
//
//	quotectl audit --file quote.json [--dictionary refs.json] [--live]
//	quotectl negotiate --current 1000 --counter 850
package main

import (
    "encoding/json"
    "fmt"
    "os"
    "time"

    "github.com/rs/zerolog/log"
    "github.com/shopspring/decimal"
    "github.com/urfave/cli/v2"

    "freightdesk/internal/adapters/extractor"
    "freightdesk/internal/audit"
    "freightdesk/internal/domain"
    "freightdesk/internal/logging"
    "freightdesk/internal/negotiation"
    "freightdesk/internal/textgen"
)

var version = "dev"

func main() {
    app := &cli.App{
        Name:    "quotectl",
        Usage:   "Audit freight quotes and rehearse carrier negotiations",
        Version: version,
        Flags: []cli.Flag{
            &cli.StringFlag{
                Name:    "log-level",
                Value:   "warn",
                Usage:   "Log level (debug, info, warn, error)",
                EnvVars: []string{"LOG_LEVEL"},
            },
            &cli.BoolFlag{
                Name:  "live",
                Usage: "Use the live model instead of rule-based reasoning",
            },
            &cli.StringFlag{
                Name:    "openai-key",
                Usage:   "API key for live reasoning",
                EnvVars: []string{"OPENAI_API_KEY"},
            },
            &cli.StringFlag{
                Name:    "model",
                Value:   "gpt-4o",
                EnvVars: []string{"OPENAI_MODEL"},
            },
            &cli.DurationFlag{
                Name:  "timeout",
                Value: 20 * time.Second,
                Usage: "Per-call model timeout",
            },
        },
        Before: func(c *cli.Context) error {
            logging.Setup("development", c.String("log-level"))
            return nil
        },
        Commands: []*cli.Command{
            auditCommand(),
            negotiateCommand(),
        },
    }
    if err := app.Run(os.Args); err != nil {
        fmt.Fprintln(os.Stderr, "error:", err)
        os.Exit(1)
    }
}

func generator(c *cli.Context) (textgen.Generator, error) {
    if !c.Bool("live") {
        return textgen.Disabled{}, nil
    }
    key := c.String("openai-key")
    if key == "" {
        return nil, fmt.Errorf("--live requires --openai-key or OPENAI_API_KEY")
    }
    return textgen.NewOpenAI(key, c.String("model")), nil
}

func auditCommand() *cli.Command {
    return &cli.Command{
        Name:  "audit",
        Usage: "Audit a quote file (structured JSON, or free text with --live)",
        Flags: []cli.Flag{
            &cli.PathFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "Quote file"},
            &cli.PathFlag{Name: "dictionary", Usage: "JSON array of surcharge references"},
        },
        Action: func(c *cli.Context) error {
            gen, err := generator(c)
            if err != nil { return err }
            text, err := os.ReadFile(c.Path("file"))
            if err != nil { return err }

            var refs []domain.SurchargeRef
            if p := c.Path("dictionary"); p != "" {
                raw, err := os.ReadFile(p)
                if err != nil { return err }
                if err := json.Unmarshal(raw, &refs); err != nil {
                    return fmt.Errorf("dictionary: %w", err)
                }
            }

            timeout := c.Duration("timeout")
            q, err := extractor.Extractor{Gen: gen, Timeout: timeout}.Extract(c.Context, string(text), refs)
            if err != nil { return err }
            res, err := audit.NewCoordinator(audit.Risk{Gen: gen, Timeout: timeout}).
                Audit(c.Context, string(text), q, audit.DictionaryFromRefs(refs))
            if err != nil { return err }
            log.Debug().Float64("confidence", res.ConfidenceScore).Msg("audit complete")
            return printJSON(struct {
                Quote *domain.ExtractedQuote `json:"quote"`
                Audit *domain.AuditResult    `json:"audit"`
            }{q, res})
        },
    }
}

func negotiateCommand() *cli.Command {
    return &cli.Command{
        Name:  "negotiate",
        Usage: "Play one counter-offer round against the carrier",
        Flags: []cli.Flag{
            &cli.StringFlag{Name: "current", Required: true, Usage: "Carrier's standing rate"},
            &cli.StringFlag{Name: "counter", Required: true, Usage: "Customer counter-offer"},
            &cli.StringFlag{Name: "carrier", Value: "Carrier"},
            &cli.StringFlag{Name: "tender", Value: "Tender"},
        },
        Action: func(c *cli.Context) error {
            current, err := decimal.NewFromString(c.String("current"))
            if err != nil { return fmt.Errorf("--current: %w", err) }
            counter, err := decimal.NewFromString(c.String("counter"))
            if err != nil { return fmt.Errorf("--counter: %w", err) }

            var responder negotiation.Responder = negotiation.RuleResponder{}
            if c.Bool("live") {
                gen, err := generator(c)
                if err != nil { return err }
                responder = negotiation.ModelResponder{Gen: gen, Timeout: c.Duration("timeout")}
            }
            p, err := responder.Respond(c.Context, negotiation.Round{
                CarrierName:  c.String("carrier"),
                TenderTitle:  c.String("tender"),
                CurrentRate:  current,
                CounterOffer: counter,
            })
            if err != nil { return err }
            return printJSON(p)
        },
    }
}

func printJSON(v any) error {
    enc := json.NewEncoder(os.Stdout)
    enc.SetIndent("", "  ")
    return enc.Encode(v)
}
