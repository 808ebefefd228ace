package main

import (
	"fmt"
	"image/png"
	"log/slog"
	"os"

	"github.com/samuelyuan/go-lighter/q2file"
	"github.com/samuelyuan/go-lighter/scene"
	"github.com/spf13/cobra"
)

func newTextureCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "texture <name> <output.png>",
		Short: "Write a WAL texture of the PAK archive as PNG and print its reflectance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.pakFile == "" {
				return fmt.Errorf("texture needs --pak")
			}
			pakFile, err := os.Open(opts.pakFile)
			if err != nil {
				return err
			}
			defer pakFile.Close()

			pak, err := q2file.LoadQ2PAK(pakFile)
			if err != nil {
				return err
			}
			palette, err := q2file.LoadPaletteFromPAK(pak)
			if err != nil {
				return err
			}
			img, walData, err := q2file.LoadQ2WALFromPAK(pak, args[0], &palette)
			if err != nil {
				return err
			}
			slog.Info("loaded WAL file", "name", args[0], "width", walData.Width, "height", walData.Height)

			imageOutputFile, err := os.Create(args[1])
			if err != nil {
				return err
			}
			if err := png.Encode(imageOutputFile, img); err != nil {
				imageOutputFile.Close()
				return err
			}

			c := q2file.AverageColor(img)
			fmt.Printf("%s: reflectance %.3f %.3f %.3f (default %.3f)\n",
				args[0], c[0], c[1], c[2], scene.DefaultReflectance.R)
			return imageOutputFile.Close()
		},
	}
}
