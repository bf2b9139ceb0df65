package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/harrylevesque/qrforge/internal/mobile"
	"github.com/harrylevesque/qrforge/internal/models"
	"github.com/harrylevesque/qrforge/internal/payload"
	"github.com/harrylevesque/qrforge/internal/qr"
)

// Default server base URL; can override with QRFORGE_SERVER env var or --server flag.
var serverBaseURL = "http://localhost:8080"

var (
	local        bool
	outPath      string
	foreground   string
	background   string
	escapeValues bool
	showPayload  bool
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

var rootCmd = &cobra.Command{
	Use:   "qrforge",
	Short: "Generate QR codes for text, links, contacts, events, Wi-Fi and more",
	Long: `qrforge renders QR codes either locally or through a running qrforge server.
Each subcommand takes the fields of one kind of code and writes <kind>_qr_code.png.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		serverBaseURL = strings.TrimRight(serverBaseURL, "/")
	},
}

func init() {
	if env := os.Getenv("QRFORGE_SERVER"); env != "" {
		serverBaseURL = env
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&serverBaseURL, "server", "s", serverBaseURL, "server base URL")
	pf.BoolVarP(&local, "local", "l", false, "render locally instead of calling the server")
	pf.StringVarP(&outPath, "out", "o", "", "output file (default <kind>_qr_code.png)")

	for _, k := range models.Kinds {
		rootCmd.AddCommand(newKindCmd(k))
	}
	rootCmd.AddCommand(newDecodeCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

func newKindCmd(k models.Kind) *cobra.Command {
	fields := mobile.Fields(k)
	strs := make(map[string]*string, len(fields))
	bools := make(map[string]*bool)

	cmd := &cobra.Command{
		Use:   string(k),
		Short: "Generate a " + k.Label() + " QR code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := map[string]string{"kind": string(k)}
			for name, v := range strs {
				values[name] = *v
			}
			for name, v := range bools {
				if *v {
					values[name] = "true"
				}
			}

			var (
				png []byte
				err error
			)
			if local {
				png, err = renderLocal(k, values)
			} else {
				png, err = renderRemote(serverBaseURL, values)
			}
			if err != nil {
				return err
			}
			return writeOutput(k, png)
		},
	}

	f := cmd.Flags()
	for _, field := range fields {
		usage := field.Label
		if field.Required {
			usage += " (required)"
		}
		if len(field.Options) > 0 {
			usage += ": " + strings.Join(field.Options, ", ")
		}
		if field.Type == "checkbox" {
			bools[field.Name] = f.Bool(flagName(field.Name), false, usage)
			continue
		}
		strs[field.Name] = f.String(flagName(field.Name), "", usage)
	}
	f.StringVar(&foreground, "fg", "", "foreground color, #rrggbb")
	f.StringVar(&background, "bg", "", "background color, #rrggbb")
	f.BoolVar(&escapeValues, "escape", false, "backslash-escape separators inside values (local only)")
	f.BoolVar(&showPayload, "show-payload", false, "print the encoded text (local only)")
	return cmd
}

// renderLocal formats and encodes without a server.
func renderLocal(k models.Kind, values map[string]string) ([]byte, error) {
	rec, err := mobile.RecordFromForm(k, func(name string) string { return values[name] })
	if err != nil {
		return nil, err
	}
	text, err := payload.Formatter{EscapeValues: escapeValues}.Format(rec)
	if errors.Is(err, payload.ErrIncomplete) {
		return nil, fmt.Errorf("%s (%w)", payload.IncompletePrompt, err)
	} else if err != nil {
		return nil, err
	}
	if showPayload {
		pterm.Info.Println("Payload:\n" + text)
	}

	fg, err := qr.ParseColor(foreground)
	if err != nil {
		return nil, err
	}
	bg, err := qr.ParseColor(background)
	if err != nil {
		return nil, err
	}
	return qr.NewEncoder(qr.Options{}).Encode(text, fg, bg)
}

// renderRemote posts the fields to /api/qr and returns the PNG.
func renderRemote(baseURL string, values map[string]string) ([]byte, error) {
	body := make(map[string]string, len(values)+2)
	for k, v := range values {
		body[k] = v
	}
	if foreground != "" {
		body["foreground"] = foreground
	}
	if background != "" {
		body["background"] = background
	}

	resp, status, err := postJSON(baseURL+"/api/qr", body)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", baseURL, err)
	}
	if status != http.StatusOK {
		return nil, serverError(status, resp)
	}
	return resp, nil
}

func writeOutput(k models.Kind, png []byte) error {
	path := outPath
	if path == "" {
		path = k.FileName()
	}
	if err := os.WriteFile(path, png, 0644); err != nil {
		return err
	}
	pterm.Success.Printfln("%s QR code written to %s (%d bytes)", k.Label(), path, len(png))
	return nil
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <image>",
		Short: "Read a QR code image and show what it contains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var res decodeResult
			if local {
				res, err = decodeLocal(data)
			} else {
				res, err = decodeRemote(serverBaseURL, data)
			}
			if err != nil {
				return err
			}
			return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(res.rows()).Render()
		},
	}
}

type decodeResult struct {
	Text   string         `json:"text"`
	Kind   models.Kind    `json:"kind"`
	Record map[string]any `json:"record"`
}

func (d decodeResult) rows() pterm.TableData {
	rows := pterm.TableData{{"Field", "Value"}, {"kind", d.Kind.Label()}}
	keys := make([]string, 0, len(d.Record))
	for k := range d.Record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, []string{k, fmt.Sprint(d.Record[k])})
	}
	return rows
}

func decodeLocal(data []byte) (decodeResult, error) {
	scan, err := mobile.Scan(data)
	if err != nil {
		return decodeResult{}, err
	}
	// Round trip through JSON so local and remote results print the same way.
	b, err := json.Marshal(scan)
	if err != nil {
		return decodeResult{}, err
	}
	var res decodeResult
	err = json.Unmarshal(b, &res)
	return res, err
}

func decodeRemote(baseURL string, data []byte) (decodeResult, error) {
	var res decodeResult
	resp, err := httpClient.Post(baseURL+"/api/decode", "image/png", bytes.NewReader(data))
	if err != nil {
		return res, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return res, serverError(resp.StatusCode, b)
	}
	err = json.Unmarshal(b, &res)
	return res, err
}

// ===== Helpers =====

func postJSON(url string, body any) ([]byte, int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}
	resp, err := httpClient.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return b, resp.StatusCode, nil
}

// serverError turns a JSON error body into an error, preferring the message
// the server meant for users.
func serverError(status int, body []byte) error {
	var e struct {
		Error   string `json:"error"`
		Field   string `json:"field"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		if e.Message != "" {
			return fmt.Errorf("%s (missing %s)", e.Message, e.Field)
		}
		return fmt.Errorf("server returned %d: %s", status, e.Error)
	}
	return fmt.Errorf("server returned %d: %s", status, strings.TrimSpace(string(body)))
}
