package commands

import (
	"github.com/spf13/cobra"

	"github.com/petal-labs/svgen/core"
)

func (a *App) newVectorizeCommand() *cobra.Command {
	var (
		model       string
		imageURL    string
		base64Stdin bool
		autoCrop    bool
		targetSize  int
		saveDir     string
		sampling    samplingFlags
	)

	cmd := &cobra.Command{
		Use:   "vectorize",
		Short: "Vectorize a raster image into SVG",
		Example: `  svgen vectorize --image-url https://example.com/logo.png
  base64 -i logo.png | svgen vectorize --image-base64-stdin --save-dir ./out`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession()
			if err != nil {
				return err
			}
			if model == "" {
				model = s.config.Effective.Model
			}

			var imageBase64 string
			if base64Stdin {
				if imageBase64, err = a.readStdinText(); err != nil {
					return err
				}
			}

			input := core.VectorizeInput{
				Model:           model,
				ImageURL:        imageURL,
				ImageBase64:     imageBase64,
				AutoCrop:        autoCrop,
				SamplingOptions: sampling.options(cmd),
			}
			if cmd.Flags().Changed("target-size") {
				input.TargetSize = &targetSize
			}

			req, err := core.BuildVectorizeRequest(input)
			if err != nil {
				return err
			}

			if req.Stream {
				events, err := s.client.VectorizeStream(a.requestContext(), req)
				if err != nil {
					return err
				}
				return a.writeEvents(events)
			}

			a.logInfo("vectorizing with %s...", req.Model)
			resp, err := s.client.Vectorize(a.requestContext(), req)
			if err != nil {
				return err
			}
			return a.writeSvgResponse(resp, saveDir)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&model, "model", "m", "", "model id (default from config)")
	flags.StringVar(&imageURL, "image-url", "", "image URL to vectorize")
	flags.BoolVar(&base64Stdin, "image-base64-stdin", false, "read a base64 image from stdin")
	flags.BoolVar(&autoCrop, "auto-crop", false, "auto-crop the image before tracing")
	flags.IntVar(&targetSize, "target-size", 0, "preprocess target size in pixels (128-4096)")
	flags.StringVar(&saveDir, "save-dir", "", "directory to write SVG files to")
	sampling.register(cmd)
	cmd.MarkFlagsMutuallyExclusive("image-url", "image-base64-stdin")

	return cmd
}
