package main

import (
	"context"

	"github.com/Cleo-Systems/elevate-scr/internal/service"
)

func main() {
	ctx := context.Background()

	svc, err := service.NewSCRService()
	if err != nil {
		panic(err)
	}

	err = svc.Start(ctx)
	if err != nil {
		panic(err)
	}
}
