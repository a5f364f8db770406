package server

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"clifton/pkg/compare"
	"clifton/pkg/store"
	"clifton/pkg/strengths"
	"clifton/pkg/utils"
)

// AddNew is the selector label for entering a person who is not saved yet.
const AddNew = "➕ Add New Person"

// Panel is the state of one person column of the form.
type Panel struct {
	Number int
	IsMe   bool
	// Selection is a saved name, or "" while adding a new person.
	Selection     string
	LastSelection string
	Name          string
	Strengths     [strengths.Size]string
}

func (p *Panel) Profile() strengths.Profile {
	return strengths.Profile{
		Name:      strings.TrimSpace(p.Name),
		Strengths: strengths.Filled(p.Strengths[:]),
	}
}

func (p *Panel) clearStrengths() {
	p.Strengths = [strengths.Size]string{}
}

func (p *Panel) fill(saved []string) {
	p.clearStrengths()
	copy(p.Strengths[:], saved)
}

// ViewState is everything the form page renders. It is rebuilt from the
// submitted form on every request.
type ViewState struct {
	Panels  [2]Panel
	Names   []string
	Errors  []string
	Notices []string
	Tips    []string
	Result  *compare.Result
}

func (v *ViewState) errorf(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

func (v *ViewState) noticef(format string, args ...any) {
	v.Notices = append(v.Notices, fmt.Sprintf(format, args...))
}

func newViewState(names []string) *ViewState {
	return &ViewState{
		Panels: [2]Panel{{Number: 1, IsMe: true}, {Number: 2}},
		Names:  names,
	}
}

// unreadableMessage is shown while the data file exists but cannot be parsed.
const unreadableMessage = "Saved people could not be read. Saving and deleting are disabled until the data file is fixed."

// newView starts a view from the store, reporting a data file that could
// not be read instead of presenting it as empty.
func (s *Server) newView() *ViewState {
	res := s.Store.Load()
	v := newViewState(res.People.Names())
	if res.Status == store.Unreadable {
		v.errorf(unreadableMessage)
	}
	return v
}

func field(n int, name string) string {
	return fmt.Sprintf("p%d_%s", n, name)
}

// parseViewState rebuilds the view from submitted form values. A changed
// selection replaces the panel's strengths with the saved ones.
func (s *Server) parseViewState(form url.Values) *ViewState {
	v := s.newView()
	for i := range v.Panels {
		p := &v.Panels[i]
		p.Selection = form.Get(field(p.Number, "selection"))
		p.LastSelection = form.Get(field(p.Number, "last"))
		if !slices.Contains(v.Names, p.Selection) {
			p.Selection = ""
		}

		for j := range p.Strengths {
			p.Strengths[j] = form.Get(field(p.Number, fmt.Sprintf("s%d", j)))
		}

		if p.Selection != "" {
			p.Name = p.Selection
		} else {
			p.Name = form.Get(field(p.Number, "name"))
		}

		if p.Selection != p.LastSelection {
			p.clearStrengths()
			if saved, ok := s.Store.Get(p.Selection); ok && p.Selection != "" {
				p.fill(saved)
			}
		}
	}
	return v
}

// finish drops selections of people that no longer exist and records the
// selection the page is rendered with.
func (v *ViewState) finish(names []string) {
	v.Names = names
	for i := range v.Panels {
		p := &v.Panels[i]
		if p.Selection != "" && !slices.Contains(names, p.Selection) {
			p.Selection = ""
		}
		p.LastSelection = p.Selection
	}
}

func (s *Server) save(v *ViewState, p *Panel) {
	name := strings.TrimSpace(p.Name)
	if err := strengths.ValidateName(name); err != nil {
		v.errorf("Person %d: Please enter a name before saving.", p.Number)
		return
	}
	if err := strengths.Validate(p.Strengths[:]); err != nil {
		v.errorf("Person %d: %v", p.Number, err)
		return
	}

	previous, existed := s.Store.Get(name)
	selected := p.Profile().Strengths
	if !s.Store.Save(name, selected) {
		v.errorf("Failed to save person. Please try again.")
		return
	}

	v.noticef("✅ %s saved successfully!", name)
	if existed {
		if changes := utils.Changes(previous, selected); len(changes) > 0 {
			v.noticef("Changes for %s: %s", name, strings.Join(changes, ", "))
		}
	}
	p.Name = name
	p.Selection = name
}

func (s *Server) delete(v *ViewState, p *Panel) {
	if p.Selection == "" {
		v.errorf("Person %d: select a saved person to delete.", p.Number)
		return
	}
	if !s.Store.Delete(p.Selection) {
		v.errorf("Failed to delete person.")
		return
	}

	v.noticef("✅ %s deleted.", p.Selection)
	p.Selection = ""
	p.Name = ""
	p.clearStrengths()
}

// validateCompare collects every problem with both panels.
func validateCompare(v *ViewState) bool {
	ok := true
	for i := range v.Panels {
		p := &v.Panels[i]
		if strengths.ValidateName(p.Name) != nil {
			v.errorf("Please enter a name for Person %d.", p.Number)
			ok = false
		}
	}
	for i := range v.Panels {
		p := &v.Panels[i]
		if err := strengths.Validate(p.Strengths[:]); err != nil {
			v.errorf("Person %d: %v", p.Number, err)
			ok = false
		}
	}
	return ok
}

func (s *Server) compare(ctx context.Context, v *ViewState, regenerate bool) {
	if !validateCompare(v) {
		return
	}
	a, b := v.Panels[0].Profile(), v.Panels[1].Profile()

	run := s.Comparer.Compare
	if regenerate {
		run = s.Comparer.Regenerate
	}
	res, err := run(ctx, a, b)
	switch {
	case errors.Is(err, compare.ErrConfiguration):
		v.errorf("⚙️ Configuration Error: %v", err)
		v.Tips = append(v.Tips, configTip)
	case err != nil:
		v.errorf("❌ Error: %v", err)
		v.Tips = append(v.Tips, "Please check your internet connection and API key, then try again.")
	default:
		v.noticef("Comparing %s and %s...", a.Name, b.Name)
		v.Result = res
	}
}

const configTip = "💡 Make sure the API key is set in the secret store or as an environment variable " +
	"(for Docker: docker run -e OPENAI_API_KEY=your_key_here ...)."

// apply runs one form action against the view.
func (s *Server) apply(ctx context.Context, v *ViewState, action string) {
	switch action {
	case "save1":
		s.save(v, &v.Panels[0])
	case "save2":
		s.save(v, &v.Panels[1])
	case "delete1":
		s.delete(v, &v.Panels[0])
	case "delete2":
		s.delete(v, &v.Panels[1])
	case "compare":
		s.compare(ctx, v, false)
	case "regenerate":
		s.compare(ctx, v, true)
	}
	v.finish(s.Store.Names())
}
