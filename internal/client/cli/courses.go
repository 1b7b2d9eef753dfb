package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/eduplatform/internal/client/models"
)

const timeLayout = "2006-01-02 15:04"

func (a *App) listCourses(ctx context.Context) error {
	courses, err := a.api.ListCourses(ctx)
	if err != nil {
		return err
	}
	if len(courses) == 0 {
		fmt.Fprintln(a.out, "No courses yet")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tINSTRUCTOR\tUPDATED")
	for _, c := range courses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Title, c.InstructorName, c.UpdatedAt.Local().Format(timeLayout))
	}
	return tw.Flush()
}

func (a *App) showCourse(ctx context.Context, id string) error {
	c, err := a.api.GetCourse(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s\n  by %s\n", c.Title, c.InstructorName)
	if c.Description != "" {
		fmt.Fprintf(a.out, "\n%s\n", c.Description)
	}
	if c.MediaURL != "" {
		fmt.Fprintf(a.out, "\nmedia: %s\n", c.MediaURL)
	}

	as, err := a.api.ListAssessments(ctx, id)
	if err != nil {
		return err
	}
	if len(as) == 0 {
		return nil
	}
	fmt.Fprintln(a.out, "\nAssessments:")
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, x := range as {
		fmt.Fprintf(tw, "  %s\t%s\tmax %d\n", x.ID, x.Title, x.MaxScore)
	}
	return tw.Flush()
}

func (a *App) addCourse(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Enter description", a.out)
	if err != nil {
		return err
	}

	c, err := a.api.CreateCourse(ctx, models.CourseInput{Title: title, Description: description})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created course %s\n", c.ID)
	return nil
}

func (a *App) deleteCourse(ctx context.Context, id string) error {
	if err := a.api.DeleteCourse(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted course %s\n", id)
	return nil
}

func (a *App) submit(ctx context.Context, assessmentID string, score int) error {
	r, err := a.api.SubmitResult(ctx, assessmentID, score)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Recorded score %d (result %s)\n", r.Score, r.ID)
	return nil
}

func (a *App) results(ctx context.Context) error {
	rs, err := a.api.MyResults(ctx)
	if err != nil {
		return err
	}
	if len(rs) == 0 {
		fmt.Fprintln(a.out, "No results yet")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ASSESSMENT\tSCORE\tDATE")
	for _, r := range rs {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", r.AssessmentID, r.Score, r.AttemptDate.Local().Format(timeLayout))
	}
	return tw.Flush()
}
