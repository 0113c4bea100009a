package main

import (
	"os"

	"github.com/DevSsChar/SnapCast/internal/app"
)

func main() {
	os.Exit(app.Run("publish", run))
}
