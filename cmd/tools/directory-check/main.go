// cmd/tools/directory-check/main.go
//
// Validates the PIO directory, the department configuration, and the
// activity manifest before they ship. Exits non-zero on the first broken
// invariant so CI can gate on it.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"rti-saarthi/internal/directory"
	"rti-saarthi/pkg/registry"
)

func main() {
	directoryPath := flag.String("directory", "configs/pio_directory.json", "Path to PIO directory file")
	departmentsPath := flag.String("departments", "configs/departments.json", "Path to departments config file")
	aliasesPath := flag.String("aliases", "configs/state_aliases.json", "Path to state aliases file")
	registryPath := flag.String("registry", "configs/activity-registry.json", "Path to activity registry file")
	flag.Parse()

	var problems []string

	dir, err := directory.Load(*directoryPath)
	if err != nil {
		fail("load pio directory: %v", err)
	}
	depts, err := directory.LoadDepartments(*departmentsPath)
	if err != nil {
		fail("load departments config: %v", err)
	}
	aliases, err := directory.LoadStateAliases(*aliasesPath)
	if err != nil {
		fail("load state aliases: %v", err)
	}

	problems = append(problems, checkDirectory(dir)...)
	problems = append(problems, checkDepartments(dir, depts)...)
	problems = append(problems, checkAliases(aliases)...)

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fail("load activity registry: %v", err)
	}
	if err := reg.Validate(); err != nil {
		problems = append(problems, fmt.Sprintf("activity registry: %v", err))
	}

	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "FAIL: %s\n", p)
		}
		os.Exit(1)
	}

	fmt.Printf("OK: %d central offices, %d regions, %d categories, %d aliases, %d activities\n",
		len(dir.Central), len(dir.Regions()), len(depts.Categories), len(aliases), len(reg.Activities))
}

// checkAliases catches entries where a region's own lowercased name is
// aliased somewhere else; that would silently re-route every query hinting
// at that region.
func checkAliases(aliases map[string]string) []string {
	var problems []string
	regions := make(map[string]bool, len(aliases))
	for _, region := range aliases {
		regions[strings.ToLower(region)] = true
	}
	for alias, region := range aliases {
		if regions[alias] && !strings.EqualFold(alias, region) {
			problems = append(problems, fmt.Sprintf("alias %q shadows a region name but maps to %q", alias, region))
		}
	}
	return problems
}

func checkDirectory(dir *directory.Directory) []string {
	var problems []string

	if len(dir.Central) == 0 {
		problems = append(problems, "directory has no central offices; routing has no terminal fallback")
	}

	seen := make(map[string]bool)
	for _, office := range dir.Central {
		if !office.IsCentral() {
			problems = append(problems, fmt.Sprintf("central office %q does not carry the central id prefix", office.ID))
		}
		if seen[office.ID] {
			problems = append(problems, fmt.Sprintf("duplicate office id %q", office.ID))
		}
		seen[office.ID] = true
		problems = append(problems, checkOfficeFields(office)...)
	}

	for region, offices := range dir.State {
		if len(offices) == 0 {
			problems = append(problems, fmt.Sprintf("region %q has no offices", region))
		}
		for _, office := range offices {
			if office.IsCentral() {
				problems = append(problems, fmt.Sprintf("region %q office %q carries the central id prefix", region, office.ID))
			}
			if seen[office.ID] {
				problems = append(problems, fmt.Sprintf("duplicate office id %q", office.ID))
			}
			seen[office.ID] = true
			problems = append(problems, checkOfficeFields(office)...)
		}
	}

	return problems
}

func checkOfficeFields(office directory.Office) []string {
	var problems []string
	if office.Department == "" {
		problems = append(problems, fmt.Sprintf("office %q has no department name", office.ID))
	}
	if len(office.Categories) == 0 {
		problems = append(problems, fmt.Sprintf("office %q has no category tags; keyword routing can never select it", office.ID))
	}
	for _, tag := range office.Categories {
		if strings.TrimSpace(tag) == "" {
			problems = append(problems, fmt.Sprintf("office %q has a blank category tag", office.ID))
		}
	}
	return problems
}

func checkDepartments(dir *directory.Directory, depts *directory.Departments) []string {
	var problems []string

	for category, info := range depts.Categories {
		if len(info.Keywords) == 0 {
			problems = append(problems, fmt.Sprintf("category %q has no keywords", category))
		}
		if info.CentralPIOID != "" {
			if _, ok := dir.CentralByID(info.CentralPIOID); !ok {
				problems = append(problems, fmt.Sprintf("category %q points at unknown central office %q", category, info.CentralPIOID))
			}
		}
	}

	for _, category := range depts.RegionLocal {
		if _, ok := depts.Categories[category]; !ok {
			problems = append(problems, fmt.Sprintf("region-local category %q is not defined", category))
		}
	}

	for category, id := range depts.FallbackCentral {
		if _, ok := dir.CentralByID(id); !ok {
			problems = append(problems, fmt.Sprintf("fallback for %q points at unknown central office %q", category, id))
		}
	}

	if depts.DefaultFallback == "" {
		problems = append(problems, "no default fallback office configured")
	} else if _, ok := dir.CentralByID(depts.DefaultFallback); !ok {
		problems = append(problems, fmt.Sprintf("default fallback %q is not a known central office", depts.DefaultFallback))
	}

	if depts.FilingFee.General < 0 {
		problems = append(problems, "general filing fee is negative")
	}

	return problems
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
