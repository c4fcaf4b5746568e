// Command redaid serves the RedAid blood-donation coordination API.
package main

import (
	"context"
	"log"

	"github.com/dalemusser/redaid/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
