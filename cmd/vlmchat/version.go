package main

import (
	"context"
	"fmt"

	"github.com/a-h/vlmchat"
)

type VersionCommand struct {
}

func (c VersionCommand) Run(ctx context.Context) (err error) {
	fmt.Println(vlmchat.Version)
	return nil
}
