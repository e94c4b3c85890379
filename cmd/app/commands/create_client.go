package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	authDomain "github.com/allisson/uidoperator/internal/auth/domain"
	authUseCase "github.com/allisson/uidoperator/internal/auth/usecase"
)

// RunCreateClient registers an API client and prints its key. Roles are read interactively
// when rolesCSV is empty.
//
// Requirements: Database must be migrated and accessible.
func RunCreateClient(
	ctx context.Context,
	clientUseCase authUseCase.ClientUseCase,
	logger *slog.Logger,
	name string,
	siteID int64,
	rolesCSV string,
	format string,
	io IOTuple,
) error {
	logger.Info("creating new client", slog.String("name", name), slog.Int64("site_id", siteID))

	if rolesCSV == "" {
		var err error
		if rolesCSV, err = promptForRoles(io); err != nil {
			return fmt.Errorf("failed to get roles: %w", err)
		}
	}

	roles, err := authDomain.ParseRoles(splitCSV(rolesCSV))
	if err != nil {
		return fmt.Errorf("failed to parse roles: %w", err)
	}

	output, err := clientUseCase.Create(ctx, &authDomain.CreateClientInput{
		Name:   name,
		SiteID: siteID,
		Roles:  roles,
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if format == "json" {
		if err := writeJSON(io.Writer, map[string]string{
			"client_id": output.ID.String(),
			"api_key":   output.APIKey,
		}); err != nil {
			return err
		}
	} else {
		outputText(output, io.Writer)
	}

	logger.Info("client created successfully",
		slog.String("client_id", output.ID.String()),
		slog.String("name", name),
	)

	return nil
}

// promptForRoles asks for a comma-separated role list.
func promptForRoles(io IOTuple) (string, error) {
	reader := bufio.NewReader(io.Reader)

	_, _ = fmt.Fprintln(io.Writer, "\nAvailable roles: generator, mapper, id_reader, optout")
	_, _ = fmt.Fprint(io.Writer, "Enter roles (comma-separated): ")

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read roles: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("at least one role is required")
	}
	return line, nil
}

func splitCSV(input string) []string {
	var parts []string
	for _, part := range strings.Split(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// outputText outputs the result in human-readable text format.
func outputText(output *authDomain.CreateClientOutput, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nClient created successfully!")
	_, _ = fmt.Fprintf(writer, "Client ID: %s\n", output.ID.String())
	_, _ = fmt.Fprintf(writer, "API Key: %s\n", output.APIKey)
	_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The API key is shown only once. Store it securely.")
}
