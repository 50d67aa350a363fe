package main

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/bodgit/spritepack"
	"github.com/bodgit/spritepack/hexutil"
	"github.com/bodgit/spritepack/lz"
	"github.com/bodgit/spritepack/pic"
	"github.com/bodgit/spritepack/tile"
	"github.com/urfave/cli/v2"
)

const defaultDB = "spritepack.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func openPacker(c *cli.Context) (*spritepack.Packer, error) {
	return spritepack.Open(c.String("db"), newLogger(c))
}

// readInput reads the file named by the first argument, or standard input
// if there is none or it is "-". Unless raw is set the input is hex text.
func readInput(c *cli.Context) ([]byte, error) {
	var r io.Reader = os.Stdin
	if file := c.Args().First(); file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if c.Bool("raw") {
		return b, nil
	}
	return hexutil.Parse(string(b))
}

func writeOutput(c *cli.Context, b []byte) error {
	if c.Bool("raw") {
		_, err := os.Stdout.Write(b)
		return err
	}
	_, err := fmt.Println(hexutil.Format(b))
	return err
}

func format(c *cli.Context) (spritepack.Format, error) {
	return spritepack.ParseFormat(c.String("format"))
}

func tileOptions(c *cli.Context) (*tile.Options, error) {
	order, err := tile.ParseOrder(c.String("order"))
	if err != nil {
		return nil, err
	}

	o := &tile.Options{
		Order:    order,
		Quantize: c.Bool("quantize"),
		TwoColor: c.Bool("two-color"),
	}

	if s := c.String("resize"); s != "" {
		if _, err := fmt.Sscanf(s, "%dx%d", &o.Resize.X, &o.Resize.Y); err != nil || o.Resize.X < 1 || o.Resize.Y < 1 {
			return nil, fmt.Errorf("invalid resize \"%s\", expected WIDTHxHEIGHT in tiles", s)
		}
	}

	return o, nil
}

func compress(c *cli.Context, f spritepack.Format, raw []byte) ([]byte, error) {
	switch {
	case f == spritepack.FormatPic && (c.IsSet("swap") || c.IsSet("mode")):
		if !c.IsSet("width") {
			return nil, errors.New("--width is required with --swap or --mode")
		}
		return pic.CompressWithParams(raw, c.Int("width"), c.Int("swap"), c.Int("mode"))
	case f == spritepack.FormatLZ:
		return lz.Compress(raw, lz.WithAlignment(c.Int("align")))
	}
	return spritepack.Compress(f, raw, c.Int("width"))
}

var tileFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "order",
		Value: tile.LeftToRight.String(),
		Usage: "tile order: left-to-right, top-to-bottom-left or top-to-bottom-right",
	},
	&cli.BoolFlag{
		Name:  "quantize",
		Usage: "reduce to four colors by median cut before mapping to shades",
	},
	&cli.StringFlag{
		Name:  "resize",
		Usage: "scale the image to WIDTHxHEIGHT tiles first",
	},
	&cli.BoolFlag{
		Name:  "two-color",
		Usage: "store only the high bitplane",
	},
}

func main() {
	app := cli.NewApp()

	app.Name = "spritepack"
	app.Usage = "Game Boy sprite compression utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"SPRITEPACK_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	formatFlag := &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   spritepack.FormatPic.String(),
		Usage:   "packed format: none, pic or lz",
	}
	rawFlag := &cli.BoolFlag{
		Name:  "raw",
		Usage: "read and write binary instead of hex",
	}

	app.Commands = []*cli.Command{
		{
			Name:        "compress",
			Usage:       "Compress tile data",
			Description: "Reads hex (or binary with --raw) tile data from FILE or standard input and writes the compressed form.",
			ArgsUsage:   "[FILE]",
			Flags: []cli.Flag{
				formatFlag,
				rawFlag,
				&cli.IntFlag{
					Name:  "width",
					Usage: "sprite width in tiles, 0 to detect",
				},
				&cli.IntFlag{
					Name:  "swap",
					Usage: "pic plane order, 0 or 1",
				},
				&cli.IntFlag{
					Name:  "mode",
					Usage: "pic mode, 0 to 2",
				},
				&cli.IntFlag{
					Name:  "align",
					Usage: "lz output alignment in bytes",
				},
				&cli.BoolFlag{
					Name:  "fallback",
					Usage: "write the input unchanged if it cannot be compressed",
				},
			},
			Action: func(c *cli.Context) error {
				f, err := format(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				raw, err := readInput(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				b, err := compress(c, f, raw)
				if err != nil {
					if !c.Bool("fallback") {
						return cli.NewExitError(err, 1)
					}
					newLogger(c).Printf("Compression failed, using uncompressed data: %v\n", err)
					b = raw
				}

				if err := writeOutput(c, b); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "decompress",
			Usage:       "Decompress tile data",
			Description: "Reads hex (or binary with --raw) compressed data from FILE or standard input and writes the tile data.",
			ArgsUsage:   "[FILE]",
			Flags:       []cli.Flag{formatFlag, rawFlag},
			Action: func(c *cli.Context) error {
				f, err := format(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				b, err := readInput(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				raw, err := spritepack.Decompress(f, b)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				if err := writeOutput(c, raw); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "import",
			Usage:       "Import images into the database",
			Description: "",
			ArgsUsage:   "IMAGE...",
			Flags:       tileFlags,
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				o, err := tileOptions(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				p, err := openPacker(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer p.Close()

				for _, file := range c.Args().Slice() {
					if _, err := p.Import(file, o); err != nil {
						return cli.NewExitError(fmt.Errorf("%s: %w", file, err), 1)
					}
				}

				return nil
			},
		},
		{
			Name:        "export",
			Usage:       "Export a sprite from the database",
			Description: "Writes the packed sprite as hex, or renders it to a PNG file with --png.",
			ArgsUsage:   "NAME",
			Flags: []cli.Flag{
				formatFlag,
				rawFlag,
				&cli.StringFlag{
					Name:  "png",
					Usage: "write the unpacked sprite to `FILE` as an image",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				f, err := format(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				p, err := openPacker(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer p.Close()

				if file := c.String("png"); file != "" {
					m, err := p.Image(c.Args().First(), f)
					if err != nil {
						return cli.NewExitError(err, 1)
					}
					if err := writePNG(file, m); err != nil {
						return cli.NewExitError(err, 1)
					}
					return nil
				}

				b, err := p.Export(c.Args().First(), f)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				if err := writeOutput(c, b); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "bank",
			Usage:       "Build a sprite bank from the database",
			Description: "Packs the named sprites, or every sprite, into a single 16 KiB bank file.",
			ArgsUsage:   "[NAME...]",
			Flags: []cli.Flag{
				formatFlag,
				&cli.StringFlag{
					Name:     "output",
					Aliases:  []string{"o"},
					Usage:    "write the bank to `FILE`",
					Required: true,
				},
			},
			Action: func(c *cli.Context) error {
				f, err := format(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				p, err := openPacker(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer p.Close()

				b, err := p.Bank(f, c.Args().Slice()...)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				data, err := b.MarshalBinary()
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				if err := ioutil.WriteFile(c.String("output"), data, 0666); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Scan a directory tree and import every image",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Flags:       tileFlags,
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				o, err := tileOptions(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				p, err := openPacker(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer p.Close()

				if err := p.Scan(c.Args().First(), o); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "list",
			Usage:       "List sprites in the database",
			Description: "",
			Action: func(c *cli.Context) error {
				p, err := openPacker(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer p.Close()

				entries, err := p.DB().List()
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 8, 1, ' ', 0)
				fmt.Fprintln(w, "NAME\tTILES\tNONE\tPIC\tLZ")
				for _, e := range entries {
					fmt.Fprintf(w, "%s\t%dx%d", e.Name, e.Width, e.Height)
					for _, f := range spritepack.Formats() {
						if n, ok := e.Sizes[f]; ok {
							fmt.Fprintf(w, "\t%d", n)
						} else {
							fmt.Fprint(w, "\t-")
						}
					}
					fmt.Fprintln(w)
				}

				if err := w.Flush(); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "stats",
			Usage:       "Compare compressed sizes of tile data",
			Description: "Reports the size of the tile data in FILE or standard input compressed with each codec and with zstd.",
			ArgsUsage:   "[FILE]",
			Flags: []cli.Flag{
				rawFlag,
				&cli.IntFlag{
					Name:  "width",
					Usage: "sprite width in tiles, 0 to detect",
				},
			},
			Action: func(c *cli.Context) error {
				raw, err := readInput(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				r, err := spritepack.Measure(raw, c.Int("width"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				w := bufio.NewWriter(os.Stdout)
				fmt.Fprintf(w, "raw:  %d\n", r.Raw)
				if r.Pic > 0 {
					fmt.Fprintf(w, "pic:  %d\n", r.Pic)
				} else {
					fmt.Fprintln(w, "pic:  -")
				}
				fmt.Fprintf(w, "lz:   %d\n", r.LZ)
				fmt.Fprintf(w, "zstd: %d\n", r.Zstd)

				if err := w.Flush(); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func writePNG(file string, m image.Image) (err error) {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return png.Encode(f, m)
}
