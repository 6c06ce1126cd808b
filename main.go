// SPDX-License-Identifier: MPL-2.0

package main

import cmd "wheelhouse/cmd/wheelhouse"

func main() {
	cmd.Execute()
}
