package placeholders

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"github.com/AnotherFullstackDev/spinewire/internal/placeholders/git"
)

const envSourcePrefix = "env."

var (
	placeholderRegExp = regexp.MustCompile(`{{\s*([^{}]+)\s*}}`)
	modifierRegExp    = regexp.MustCompile(`(\w+)(\(([^()]*)\))?`)
)

type PlaceholderResolver func() (string, error)

type placeholderModifier struct {
	name string
	args []string
}

type modifierResolver func(string, []string) (string, error)

type placeholder struct {
	raw         string
	value       string
	modifiers   []placeholderModifier
	rawStartIdx int
	rawEndIdx   int
}

// Service resolves dynamic expressions such as "{{ git.branch | slug }}" inside configuration values.
// Renderer placeholders ({{PROJECT_ID}}) carry neither a dot nor a pipe and are left untouched.
type Service struct {
	projectDir  string
	gitRepoInfo git.RepositoryInfoService
	lookupEnv   func(string) (string, bool)
	now         func() time.Time
}

// NewService accepts a nil gitRepoInfo for projects outside of a git repository; git sources then fail.
func NewService(projectDir string, gitRepoInfo git.RepositoryInfoService) *Service {
	return &Service{
		projectDir:  projectDir,
		gitRepoInfo: gitRepoInfo,
		lookupEnv:   os.LookupEnv,
		now:         time.Now,
	}
}

func isExpression(inner string) bool {
	return strings.ContainsAny(inner, ".|")
}

func (s *Service) extractPlaceholders(value string) ([]placeholder, error) {
	matches := placeholderRegExp.FindAllStringSubmatchIndex(value, -1)
	placeholders := make([]placeholder, 0, len(matches))

	for _, match := range matches {
		if len(match) < 4 {
			return nil, fmt.Errorf("invalid match structure")
		}

		rawStartIdx, rawEndIdx := match[0], match[1]
		valueStartIdx, valueEndIdx := match[2], match[3]
		if rawStartIdx >= valueStartIdx || valueEndIdx >= rawEndIdx {
			return nil, fmt.Errorf("mismatched match indices")
		}

		raw := value[rawStartIdx:rawEndIdx]
		fullInnerValue := value[valueStartIdx:valueEndIdx]
		if !isExpression(fullInnerValue) {
			continue
		}

		valueParts := strings.Split(fullInnerValue, "|")
		innerValue := strings.TrimSpace(valueParts[0])
		if innerValue == "" {
			return nil, fmt.Errorf("empty source in placeholder: %s. %w", raw, lib.BadUserInputError)
		}

		modifiers := make([]placeholderModifier, 0, len(valueParts)-1)
		for _, part := range valueParts[1:] {
			rawModifier := strings.TrimSpace(part)
			if rawModifier == "" {
				continue
			}

			modifierMatch := modifierRegExp.FindStringSubmatch(rawModifier)
			if modifierMatch == nil || modifierMatch[1] == "" {
				return nil, fmt.Errorf("invalid modifier format in placeholder: %s. %w", raw, lib.BadUserInputError)
			}

			var modifierArgs []string
			if modifierArgsRaw := modifierMatch[3]; modifierArgsRaw != "" {
				modifierArgs = strings.Split(modifierArgsRaw, ",")
				for i := range modifierArgs {
					modifierArgs[i] = strings.TrimSpace(modifierArgs[i])
					if unquoted, err := strconv.Unquote(modifierArgs[i]); err == nil {
						modifierArgs[i] = unquoted
					}
				}
			}

			modifiers = append(modifiers, placeholderModifier{
				name: modifierMatch[1],
				args: modifierArgs,
			})
		}

		placeholders = append(placeholders, placeholder{
			raw:         raw,
			value:       innerValue,
			modifiers:   modifiers,
			rawStartIdx: rawStartIdx,
			rawEndIdx:   rawEndIdx,
		})
	}

	return placeholders, nil
}

func (s *Service) ResolvePlaceholders(value string, extraResolvers ...map[string]PlaceholderResolver) (string, error) {
	placeholders, err := s.extractPlaceholders(value)
	if err != nil {
		return "", fmt.Errorf("extracting placeholders: %w", err)
	}
	if len(placeholders) == 0 {
		return value, nil
	}

	placeholderResolvers := map[string]PlaceholderResolver{
		"git.branch":       s.resolveGitBranch,
		"git.commit":       s.resolveGitCommit,
		"git.short_commit": s.resolveGitShortCommit,
		"git.tag":          s.resolveGitTag,
		"project.dir":      s.resolveProjectDir,
		"time.timestamp":   resolveUnixTimestamp(s.now),
		"time.iso8601":     resolveISO8601Timestamp(s.now),
	}

	modifierResolvers := map[string]modifierResolver{
		"upper":       upperModifier,
		"lower":       lowerModifier,
		"trim":        trimModifier,
		"replace":     replaceModifier,
		"replace_all": replaceAllModifier,
		"slug":        slugModifier,
		"default":     defaultModifier,
	}

	var out strings.Builder
	lastIdx := 0
	for _, placeholder := range placeholders {
		resolver, ok := s.findResolver(placeholder.value, placeholderResolvers, extraResolvers)
		if !ok {
			return "", fmt.Errorf("no resolver found for placeholder: %s. %w", placeholder.raw, lib.BadUserInputError)
		}

		resolvedValue, err := resolver()
		if err != nil {
			return "", fmt.Errorf("resolving placeholder %s: %w", placeholder.raw, err)
		}

		for _, modifier := range placeholder.modifiers {
			modifierFunc, ok := modifierResolvers[modifier.name]
			if !ok {
				return "", fmt.Errorf("no resolver found for modifier: %s in placeholder: %s. %w", modifier.name, placeholder.raw, lib.BadUserInputError)
			}

			resolvedValue, err = modifierFunc(resolvedValue, modifier.args)
			if err != nil {
				return "", fmt.Errorf("applying modifier %s to placeholder %s: %w", modifier.name, placeholder.raw, err)
			}
		}

		out.WriteString(value[lastIdx:placeholder.rawStartIdx])
		out.WriteString(resolvedValue)
		lastIdx = placeholder.rawEndIdx
	}
	out.WriteString(value[lastIdx:])

	return out.String(), nil
}

// ResolveValues resolves every string in values, descending into nested maps. values is not modified.
func (s *Service) ResolveValues(values map[string]any) (map[string]any, error) {
	resolved := make(map[string]any, len(values))
	for key, value := range values {
		switch v := value.(type) {
		case string:
			str, err := s.ResolvePlaceholders(v)
			if err != nil {
				return nil, fmt.Errorf("resolving value of %q: %w", key, err)
			}
			resolved[key] = str
		case map[string]any:
			nested, err := s.ResolveValues(v)
			if err != nil {
				return nil, fmt.Errorf("resolving %q: %w", key, err)
			}
			resolved[key] = nested
		default:
			resolved[key] = value
		}
	}
	return resolved, nil
}

func (s *Service) findResolver(source string, builtin map[string]PlaceholderResolver, extra []map[string]PlaceholderResolver) (PlaceholderResolver, bool) {
	if resolver, ok := builtin[source]; ok {
		return resolver, true
	}

	for _, resolvers := range extra {
		if resolver, ok := resolvers[source]; ok {
			return resolver, true
		}
	}

	if name, ok := strings.CutPrefix(source, envSourcePrefix); ok && name != "" {
		return func() (string, error) {
			value, _ := s.lookupEnv(name)
			return value, nil
		}, true
	}

	return nil, false
}

func (s *Service) requireGit() error {
	if s.gitRepoInfo == nil {
		return fmt.Errorf("%w - project at %s", git.NotARepositoryError, s.projectDir)
	}
	return nil
}

func (s *Service) resolveGitBranch() (string, error) {
	if err := s.requireGit(); err != nil {
		return "", err
	}
	branch, err := s.gitRepoInfo.CurrentBranch()
	if err != nil {
		return "", fmt.Errorf("getting current git branch: %w", err)
	}
	return branch, nil
}

func (s *Service) resolveGitTag() (string, error) {
	if err := s.requireGit(); err != nil {
		return "", err
	}
	tag, err := s.gitRepoInfo.CurrentTag()
	if err != nil {
		return "", fmt.Errorf("getting current git tag: %w", err)
	}
	if tag == "" {
		return "", fmt.Errorf("no git tag found for current commit: %w", lib.BadUserInputError)
	}
	return tag, nil
}

func (s *Service) resolveGitCommit() (string, error) {
	if err := s.requireGit(); err != nil {
		return "", err
	}
	commit, err := s.gitRepoInfo.CurrentCommitHash()
	if err != nil {
		return "", fmt.Errorf("getting current git commit: %w", err)
	}
	return commit, nil
}

func (s *Service) resolveGitShortCommit() (string, error) {
	commit, err := s.resolveGitCommit()
	if err != nil {
		return "", err
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return commit, nil
}

func (s *Service) resolveProjectDir() (string, error) {
	abs, err := filepath.Abs(s.projectDir)
	if err != nil {
		return "", fmt.Errorf("resolving project directory: %w", err)
	}
	return filepath.Base(abs), nil
}
