package cmd

import (
	"fmt"
	"io"
	"strings"
)

var ANSWERS = map[string]bool{
	"y":   true,
	"yes": true,
	"n":   false,
	"no":  false,
}

func prompt(in io.Reader, out io.Writer, q string) bool {
	fmt.Fprint(out, "> "+q+" [Y/N] ")
	var answer string
	_, _ = fmt.Fscan(in, &answer)
	return ANSWERS[strings.ToLower(answer)]
}
