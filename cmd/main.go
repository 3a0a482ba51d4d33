package main

import (
	"github.com/corray333/littlelemon/internal/app"
	"github.com/corray333/littlelemon/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
