package main

import (
	"github.com/eks-patterns/eksops/pkg/cli"
)

func main() {
	cli.Execute()
}
