package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessionlab-go/internal/core/service"
)

// HashPasswordCommand returns the hash-password command.
func HashPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash-password",
		Usage:     "Print an argon2id hash for the users file",
		ArgsUsage: "[password]",
		Description: "Reads the password from the first argument, or from the first line of stdin.\n" +
			"The hardened app accepts the printed hash as a users file secret.",
		Action: hashPassword,
	}
}

func hashPassword(c *cli.Context) error {
	secret := c.Args().First()
	if secret == "" {
		var in io.Reader = os.Stdin
		if c.App != nil && c.App.Reader != nil {
			in = c.App.Reader
		}
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read password: %w", err)
		}
		secret = strings.TrimRight(line, "\r\n")
	}
	if secret == "" {
		return errors.New("password is required")
	}

	hash, err := service.HashPassword(secret)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(writer(c), hash)
	return err
}
