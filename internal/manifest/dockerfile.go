package manifest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Parses a Dockerfile subset into a [Recipe].
//
// Supported instructions: FROM (with AS), WORKDIR, ENV, RUN, COPY
// (including --from), ADD (treated as COPY), SHELL, CMD, and ENTRYPOINT.
// Comments, blank lines, and backslash continuations are handled.
// Any other instruction is an error.
//
// FROM references name images previously imported into the runtime, so
// "FROM python:3.11-slim" resolves against the local image store rather
// than a remote registry. As in a Dockerfile, only the final stage is
// exported; earlier stages are marked transient.
func ParseDockerfile(data []byte) (*Recipe, error) {
	recipe := &Recipe{}
	var stage *Stage

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Join continuation lines.
		for strings.HasSuffix(line, "\\") && scanner.Scan() {
			lineno++
			line = strings.TrimSuffix(line, "\\") + " " + strings.TrimSpace(scanner.Text())
		}

		instruction, args, _ := strings.Cut(line, " ")
		args = strings.TrimSpace(args)

		if strings.EqualFold(instruction, "FROM") {
			s, err := parseFromLine(args, lineno)
			if err != nil {
				return nil, err
			}
			recipe.Stages = append(recipe.Stages, s)
			stage = &recipe.Stages[len(recipe.Stages)-1]
			continue
		}

		if stage == nil {
			return nil, fmt.Errorf("line %d: %s before FROM", lineno, strings.ToUpper(instruction))
		}

		if err := parseInstruction(stage, instruction, args, lineno); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(recipe.Stages) == 0 {
		return nil, fmt.Errorf("no FROM instruction")
	}

	// Only the final stage is exported.
	for i := range recipe.Stages[:len(recipe.Stages)-1] {
		recipe.Stages[i].Transient = true
	}

	return recipe, nil
}

// Parses a FROM line into a new stage.
func parseFromLine(args string, lineno int) (Stage, error) {
	fields := strings.Fields(args)

	switch len(fields) {
	case 1:
		return Stage{From: "image:" + fields[0]}, nil
	case 3:
		if !strings.EqualFold(fields[1], "AS") {
			break
		}
		return Stage{From: "image:" + fields[0], Name: strings.ToLower(fields[2])}, nil
	}

	return Stage{}, fmt.Errorf("line %d: malformed FROM %q", lineno, args)
}

// Applies a non-FROM instruction to the current stage.
func parseInstruction(stage *Stage, instruction, args string, lineno int) error {
	switch strings.ToUpper(instruction) {
	case "RUN":
		if args == "" {
			return fmt.Errorf("line %d: RUN requires a command", lineno)
		}
		stage.Steps = append(stage.Steps, Step{Run: args})

	case "COPY", "ADD":
		copyStr, err := parseCopyArgs(args)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineno, err)
		}
		stage.Steps = append(stage.Steps, Step{Copy: copyStr})

	case "WORKDIR":
		if args == "" {
			return fmt.Errorf("line %d: WORKDIR requires a path", lineno)
		}
		stage.Steps = append(stage.Steps, Step{Workdir: args})

	case "ENV":
		env, err := parseEnvArgs(args)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineno, err)
		}
		stage.Steps = append(stage.Steps, Step{Env: env})

	case "CMD":
		stage.Cmd = parseExecForm(args)

	case "ENTRYPOINT":
		stage.Entrypoint = parseExecForm(args)

	case "SHELL":
		argv := parseExecForm(args)
		if len(argv) == 0 {
			return fmt.Errorf("line %d: SHELL requires a command", lineno)
		}
		stage.Steps = append(stage.Steps, Step{Shell: argv[0]})

	default:
		return fmt.Errorf("line %d: unsupported instruction %s", lineno, strings.ToUpper(instruction))
	}

	return nil
}

// Parses COPY/ADD arguments into the recipe's "src dest" copy string.
//
// A --from=stage flag becomes the cross-stage "stage:src" prefix. Other
// flags (--chown, --chmod) are not supported.
func parseCopyArgs(args string) (string, error) {
	fields := strings.Fields(args)

	from := ""
	paths := fields
	if len(fields) > 0 && strings.HasPrefix(fields[0], "--") {
		flag, value, _ := strings.Cut(fields[0], "=")
		if flag != "--from" || value == "" {
			return "", fmt.Errorf("unsupported COPY flag %q", fields[0])
		}
		from = strings.ToLower(value)
		paths = fields[1:]
	}

	if len(paths) != 2 {
		return "", fmt.Errorf("COPY requires source and destination, got %q", args)
	}

	src := paths[0]
	if from != "" {
		src = from + ":" + src
	}

	return src + " " + paths[1], nil
}

// Parses ENV arguments into a key-value map.
//
// Both the legacy space form ("ENV key value") and the assignment form
// ("ENV k=v k2=v2", with optional double quotes around values) are accepted.
func parseEnvArgs(args string) (map[string]string, error) {
	if args == "" {
		return nil, fmt.Errorf("ENV requires a key and value")
	}

	env := make(map[string]string)

	if !strings.Contains(strings.Fields(args)[0], "=") {
		// Legacy form: everything after the key is the value.
		key, value, ok := strings.Cut(args, " ")
		if !ok {
			return nil, fmt.Errorf("ENV %q missing value", args)
		}
		env[key] = strings.TrimSpace(value)
		return env, nil
	}

	for _, pair := range splitEnvPairs(args) {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("malformed ENV assignment %q", pair)
		}
		env[key] = strings.Trim(value, `"`)
	}

	return env, nil
}

// Splits "k=v k2="v 2"" into assignment tokens, respecting double quotes.
func splitEnvPairs(s string) []string {
	var pairs []string
	var b strings.Builder
	quoted := false

	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			b.WriteRune(r)
		case r == ' ' && !quoted:
			if b.Len() > 0 {
				pairs = append(pairs, b.String())
				b.Reset()
			}
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		pairs = append(pairs, b.String())
	}

	return pairs
}

// Parses CMD/ENTRYPOINT arguments.
//
// The JSON array form is used verbatim. The shell form is wrapped in
// "/bin/sh -c", matching Dockerfile semantics.
func parseExecForm(args string) []string {
	args = strings.TrimSpace(args)
	if args == "" {
		return nil
	}

	if strings.HasPrefix(args, "[") {
		var argv []string
		if err := json.Unmarshal([]byte(args), &argv); err == nil {
			return argv
		}
	}

	return []string{"/bin/sh", "-c", args}
}
