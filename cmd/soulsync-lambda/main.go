package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	lambdaadapter "github.com/williskipsjr/SoulSync-Beta/internal/adapters/lambda"
	"github.com/williskipsjr/SoulSync-Beta/internal/bootstrap"
	"github.com/williskipsjr/SoulSync-Beta/internal/config"
)

func main() {
	// Lambda passes no flags; everything comes from the environment.
	cfg, err := config.Parse(nil)
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	app, err := bootstrap.New(context.Background(), cfg)
	if err != nil {
		fmt.Printf("Error initializing application: %v\n", err)
		os.Exit(1)
	}

	lambda.Start(lambdaadapter.NewProxy(app.Handler).Handle)
}
