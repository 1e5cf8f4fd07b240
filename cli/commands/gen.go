package commands

import (
	"github.com/spf13/cobra"

	"github.com/petal-labs/svgen/core"
)

// samplingFlags holds the generation knobs shared by gen and vectorize.
type samplingFlags struct {
	n               int
	topP            float64
	maxOutputTokens int
	temperature     float64
	presencePenalty float64
	stream          bool
}

func (s *samplingFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntVarP(&s.n, "count", "n", 1, "number of SVGs to generate (1-16)")
	flags.Float64Var(&s.topP, "top-p", 0, "nucleus sampling probability (0-1)")
	flags.IntVar(&s.maxOutputTokens, "max-output-tokens", 0, "maximum output tokens")
	flags.Float64Var(&s.temperature, "temperature", 0, "sampling temperature (0-2)")
	flags.Float64Var(&s.presencePenalty, "presence-penalty", 0, "presence penalty (-2 to 2)")
	flags.BoolVar(&s.stream, "stream", false, "stream server-sent events")
}

// options returns only the knobs set on the command line.
func (s *samplingFlags) options(cmd *cobra.Command) core.SamplingOptions {
	flags := cmd.Flags()
	opts := core.SamplingOptions{Stream: s.stream}
	if flags.Changed("count") {
		opts.N = &s.n
	}
	if flags.Changed("top-p") {
		opts.TopP = &s.topP
	}
	if flags.Changed("max-output-tokens") {
		opts.MaxOutputTokens = &s.maxOutputTokens
	}
	if flags.Changed("temperature") {
		opts.Temperature = &s.temperature
	}
	if flags.Changed("presence-penalty") {
		opts.PresencePenalty = &s.presencePenalty
	}
	return opts
}

func (a *App) newGenCommand() *cobra.Command {
	var (
		prompt          string
		model           string
		instructions    string
		referenceURLs   []string
		referenceBase64 []string
		saveDir         string
		sampling        samplingFlags
	)

	cmd := &cobra.Command{
		Use:     "gen",
		Aliases: []string{"run", "do"},
		Short:   "Generate SVGs from a text prompt",
		Example: `  svgen gen -p "A rocket icon"
  svgen gen -p "A cat logo" -n 3 --save-dir ./out
  svgen gen -p "A wave" --stream --plain`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession()
			if err != nil {
				return err
			}
			if model == "" {
				model = s.config.Effective.Model
			}

			req, err := core.BuildGenerateRequest(core.GenerateInput{
				Model:           model,
				Prompt:          prompt,
				Instructions:    instructions,
				ReferenceURLs:   referenceURLs,
				ReferenceBase64: referenceBase64,
				SamplingOptions: sampling.options(cmd),
			})
			if err != nil {
				return err
			}

			if req.Stream {
				events, err := s.client.GenerateStream(a.requestContext(), req)
				if err != nil {
					return err
				}
				return a.writeEvents(events)
			}

			a.logInfo("generating with %s...", req.Model)
			resp, err := s.client.Generate(a.requestContext(), req)
			if err != nil {
				return err
			}
			return a.writeSvgResponse(resp, saveDir)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&prompt, "prompt", "p", "", "text prompt (required)")
	flags.StringVarP(&model, "model", "m", "", "model id (default from config)")
	flags.StringVar(&instructions, "instructions", "", "additional style instructions")
	flags.StringSliceVar(&referenceURLs, "reference-url", nil, "reference image URL (repeatable)")
	flags.StringSliceVar(&referenceBase64, "reference-base64", nil, "base64 reference image (repeatable)")
	flags.StringVar(&saveDir, "save-dir", "", "directory to write SVG files to")
	sampling.register(cmd)
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

// writeSvgResponse prints a finished response, saving files first when
// saveDir is set. Plain output lists the saved files, or the response id.
func (a *App) writeSvgResponse(resp *core.SvgResponse, saveDir string) error {
	files := []string{}
	if saveDir != "" {
		saved, err := saveSvgResponse(resp, saveDir)
		if err != nil {
			return err
		}
		files = saved
	}

	plain := files
	if len(plain) == 0 {
		plain = []string{resp.ID}
	}
	return a.writeOutput(map[string]any{"response": resp, "files": files}, plain)
}

// writeEvents prints decoded stream events.
func (a *App) writeEvents(events []core.SSEEvent) error {
	if events == nil {
		events = []core.SSEEvent{}
	}
	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, ev.Event+"\t"+eventData(ev.Data))
	}
	return a.writeOutput(map[string]any{"stream": events}, lines)
}

func eventData(data any) string {
	if s, ok := data.(string); ok {
		return s
	}
	b, err := jsonCompact(data)
	if err != nil {
		return ""
	}
	return b
}
