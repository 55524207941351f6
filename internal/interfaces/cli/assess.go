package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scamshield/riskengine/internal/application/assessment"
	"github.com/scamshield/riskengine/internal/domain/artifact"
)

type assessOptions struct {
	Link      string
	VPA       string
	Message   string
	QRPayload string
}

// resolve maps the mutually exclusive artifact flags onto a single request.
func (o *assessOptions) resolve() (artifact.RiskRequest, error) {
	var reqs []artifact.RiskRequest
	if o.Link != "" {
		reqs = append(reqs, artifact.RiskRequest{Type: artifact.TypeLink, CanonicalValue: o.Link})
	}
	if o.VPA != "" {
		reqs = append(reqs, artifact.RiskRequest{Type: artifact.TypeVPA, CanonicalValue: o.VPA})
	}
	if o.Message != "" {
		reqs = append(reqs, artifact.RiskRequest{Type: artifact.TypeMessage, CanonicalValue: o.Message})
	}
	if o.QRPayload != "" {
		reqs = append(reqs, artifact.RiskRequest{Type: artifact.TypeQR, CanonicalValue: o.QRPayload})
	}
	if len(reqs) != 1 {
		return artifact.RiskRequest{}, fmt.Errorf("exactly one of --link, --vpa, --message or --qr-payload is required")
	}
	return reqs[0], nil
}

// NewAssessCmd creates the `riskctl assess` command.
func NewAssessCmd(build EngineBuilder) *cobra.Command {
	opts := &assessOptions{}

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Assess a single artifact and print the verdict",
		Example: `  riskctl assess --link https://paytm-kyc-verify.tk/login
  riskctl assess --vpa merchant@oksbi
  riskctl assess --message "Your KYC will expire today, click http://bit.ly/x"
  riskctl assess --qr-payload "upi://pay?pa=merchant@oksbi&am=5"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.resolve()
			if err != nil {
				return err
			}

			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			engine, err := build(cliCtx.Config, cliCtx.Logger)
			if err != nil {
				return fmt.Errorf("initialize engine: %w", err)
			}

			resp, err := engine.Assess(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printResponse(cmd, cliCtx.Output, resp)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Link, "link", "", "URL to assess")
	f.StringVar(&opts.VPA, "vpa", "", "virtual payment address to assess")
	f.StringVar(&opts.Message, "message", "", "message text to assess")
	f.StringVar(&opts.QRPayload, "qr-payload", "", "decoded QR payload to assess")

	return cmd
}

func printResponse(cmd *cobra.Command, format string, resp *assessment.Response) error {
	out := cmd.OutOrStdout()

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "text", "":
		fmt.Fprintf(out, "Verdict:     %s\n", resp.Verdict)
		fmt.Fprintf(out, "Score:       %.2f\n", resp.Score)
		fmt.Fprintf(out, "Type:        %s\n", resp.ArtifactType)
		fmt.Fprintf(out, "Fingerprint: %s\n", resp.Fingerprint)
		if resp.Cached {
			fmt.Fprintln(out, "Cached:      yes")
		}
		fmt.Fprintln(out, "Reasons:")
		for _, r := range resp.Reasons {
			fmt.Fprintf(out, "  - %s\n", r)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", strings.ToLower(format))
	}
}
