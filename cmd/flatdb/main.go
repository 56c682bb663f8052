package main

import (
	"fmt"
	"os"

	_ "github.com/autom8ter/flatdb/storage/badger"
	_ "github.com/autom8ter/flatdb/storage/file"
	_ "github.com/autom8ter/flatdb/storage/memory"
	_ "github.com/autom8ter/flatdb/storage/minio"
	_ "github.com/autom8ter/flatdb/storage/redis"
	_ "github.com/autom8ter/flatdb/storage/s3"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
