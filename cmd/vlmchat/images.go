package main

import (
	"context"
	"io"
	"os"

	"github.com/a-h/vlmchat/catalog"
	"github.com/a-h/vlmchat/models"
	"github.com/a-h/vlmchat/session"
	"gopkg.in/yaml.v3"
)

type ImagesCommand struct {
	ImagesDir string `help:"Directory containing images." short:"i" env:"IMAGES_DIR" default:"images"`
	LogLevel  string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c ImagesCommand) Run(ctx context.Context) (err error) {
	return c.run(os.Stdout)
}

func (c ImagesCommand) run(stdout io.Writer) (err error) {
	log := getLogger(c.LogLevel)
	images, err := catalog.Find(log, c.ImagesDir)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return session.ErrNoImages
	}
	list := make([]models.CatalogImage, len(images))
	for i, img := range images {
		list[i] = models.CatalogImage{
			Index:  i + 1,
			Name:   img.Name,
			Path:   img.Path,
			SizeKB: img.SizeKB(),
		}
	}
	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	if err = enc.Encode(list); err != nil {
		return err
	}
	return enc.Close()
}
