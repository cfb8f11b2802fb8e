// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package main

import "github.com/kbo-data/kbodata/cmd"

func main() {
	cmd.Execute()
}
