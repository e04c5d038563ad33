package sanitize

import "github.com/fieldops-hq/fieldops/job"

// Job sanitizes every free-text field of j in place: title, description,
// customer and location text, both note sequences, and completion
// artifacts. Enumerations, identifiers, and numeric fields are untouched.
func Job(j *job.Job) {
	j.Title = Text(j.Title)
	j.Description = Text(j.Description)

	j.Customer.Name = Text(j.Customer.Name)
	j.Customer.Email = Text(j.Customer.Email)
	if j.Customer.Address != nil {
		location(j.Customer.Address)
	}

	location(&j.Location)

	for i := range j.Requirements.Equipment {
		eq := &j.Requirements.Equipment[i]
		eq.Name = Text(eq.Name)
		eq.Model = Text(eq.Model)
		eq.SerialNumber = Text(eq.SerialNumber)
	}

	notes(j.PublicNotes)
	notes(j.InternalNotes)

	if j.Completion != nil {
		j.Completion.CompletionNotes = Text(j.Completion.CompletionNotes)
		j.Completion.WorkSummary = Text(j.Completion.WorkSummary)
	}
}

func location(l *job.Location) {
	l.Address = Text(l.Address)
	l.City = Text(l.City)
	l.State = Text(l.State)
	l.Landmark = Text(l.Landmark)
	l.AccessInstructions = Text(l.AccessInstructions)
}

func notes(ns []job.Note) {
	for i := range ns {
		ns[i].Text = Text(ns[i].Text)
	}
}
