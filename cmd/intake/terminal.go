package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"naql_backend/internal/leads/wizard"
	"naql_backend/platform/phone"
)

// terminal reads answers line by line and doubles as the wizard's Notifier
// and Navigator.
type terminal struct {
	in  *bufio.Scanner
	out io.Writer
}

func newTerminal(in io.Reader, out io.Writer) *terminal {
	return &terminal{in: bufio.NewScanner(in), out: out}
}

func (t *terminal) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(t.out, format, args...)
}

// ask prints prompt and returns the trimmed answer. A closed input reports
// io.EOF.
func (t *terminal) ask(prompt string) (string, error) {
	t.printf("%s: ", prompt)
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(t.in.Text()), nil
}

// choose lists options numbered from 1 and returns the zero-based pick.
// When optional is set an empty answer returns -1.
func (t *terminal) choose(prompt string, options []string, optional bool) (int, error) {
	for i, o := range options {
		t.printf("  %d) %s\n", i+1, o)
	}
	for {
		ans, err := t.ask(prompt)
		if err != nil {
			return 0, err
		}
		if ans == "" && optional {
			return -1, nil
		}
		n, err := strconv.Atoi(phone.DigitsToASCII(ans))
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		t.printf("اختيار غير صالح، أدخل رقماً من 1 إلى %d\n", len(options))
	}
}

func (t *terminal) confirm(prompt string) (bool, error) {
	i, err := t.choose(prompt, []string{"نعم", "لا"}, false)
	return i == 0, err
}

func (t *terminal) Notify(n wizard.Notice) {
	t.printf("\n[!] %s: %s\n", n.Title, n.Message)
}

func (t *terminal) ShowConfirmation(c wizard.Confirmation) {
	t.printf("\nشكراً %s، تم استلام طلبك بنجاح!\n", c.CustomerName)
	t.printf("رقم الطلب: %s\n", c.LeadID)
}

var (
	_ wizard.Notifier  = (*terminal)(nil)
	_ wizard.Navigator = (*terminal)(nil)
)
