package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/harrylevesque/qrforge/internal/files"
)

func main() {
	keyFile := pflag.StringP("out", "o", files.DefaultMasterKeyFile, "where to write the hex encoded key")
	force := pflag.BoolP("force", "f", false, "overwrite an existing key file, invalidating outstanding download links")
	pflag.Parse()

	if _, err := files.WriteMasterKey(*keyFile, *force); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Master key written to %s\n", *keyFile)
}
