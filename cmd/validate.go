package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/International-Combat-Archery-Alliance/event-checkin/validate"
	"github.com/spf13/cobra"
)

var validators = map[string]func(string) bool{
	"email":      validate.IsValidEmail,
	"student-id": validate.IsValidStudentID,
	"phone":      validate.IsValidPhone,
	"url":        validate.IsValidURL,
	"required":   validate.IsRequired,
}

func validatorKinds() []string {
	kinds := make([]string, 0, len(validators))
	for k := range validators {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

func newValidateCmd() *cobra.Command {
	var minLen, maxLen int

	cmd := &cobra.Command{
		Use:   "validate <kind> <value>",
		Short: "Check a value against one of the field validators",
		Long: fmt.Sprintf(`Check a value against one of the field validators.

Kinds: %s.
--min and --max additionally bound the trimmed length in characters.`, strings.Join(validatorKinds(), ", ")),
		Args:      cobra.ExactArgs(2),
		ValidArgs: validatorKinds(),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, value := args[0], args[1]

			isValid, ok := validators[kind]
			if !ok {
				return fmt.Errorf("unknown kind %q, expected one of %s", kind, strings.Join(validatorKinds(), ", "))
			}

			rules := []validate.Rule{{Message: "is not a valid " + kind, Valid: isValid}}
			if cmd.Flags().Changed("min") {
				rules = append(rules, validate.Min(minLen))
			}
			if cmd.Flags().Changed("max") {
				rules = append(rules, validate.Max(maxLen))
			}

			return report(cmd.OutOrStdout(), value, validate.Check(value, rules...))
		},
	}
	cmd.Flags().IntVar(&minLen, "min", 0, "minimum length")
	cmd.Flags().IntVar(&maxLen, "max", 0, "maximum length")

	cmd.AddCommand(newValidateImageCmd())

	return cmd
}

// localFile adapts a file on disk to validate.File.
type localFile struct {
	contentType string
	size        int64
}

func (f localFile) ContentType() string { return f.contentType }
func (f localFile) Size() int64         { return f.size }

func openLocalFile(path string) (localFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return localFile{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return localFile{}, err
	}

	// DetectContentType looks at no more than the first 512 bytes.
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return localFile{}, err
	}

	return localFile{
		contentType: http.DetectContentType(head[:n]),
		size:        info.Size(),
	}, nil
}

func newValidateImageCmd() *cobra.Command {
	var maxMB float64

	cmd := &cobra.Command{
		Use:   "image <path>",
		Short: "Check that a file is an accepted image within the size limit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := openLocalFile(args[0])
			if err != nil {
				return err
			}

			var failed []string
			if !validate.IsValidImageFile(file) {
				failed = append(failed, fmt.Sprintf("has type %s, which is not an accepted image type", file.ContentType()))
			}
			if !validate.IsValidFileSize(file, maxMB) {
				failed = append(failed, fmt.Sprintf("is larger than %gMB", maxMB))
			}

			return report(cmd.OutOrStdout(), args[0], failed)
		},
	}
	cmd.Flags().Float64Var(&maxMB, "max-mb", 5, "maximum size in megabytes")

	return cmd
}

func report(out io.Writer, value string, failed []string) error {
	if len(failed) == 0 {
		fmt.Fprintf(out, "%q is valid\n", value)
		return nil
	}

	for _, msg := range failed {
		fmt.Fprintf(out, "%q %s\n", value, msg)
	}
	return fmt.Errorf("%q failed %d check(s)", value, len(failed))
}
