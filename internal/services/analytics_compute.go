package services

import (
	"sort"
	"time"

	"github.com/SAP-F-2025/school-assessment-service/internal/models"
)

// OverallPercentage is round(sum obtained / sum total * 100) over every
// graded result, 0 when there are none.
func OverallPercentage(results []models.GradedResult) int {
	obtained, total := 0, 0
	for _, r := range results {
		obtained += r.MarksObtained
		total += r.TotalMarks
	}
	return models.Percentage(obtained, total)
}

// SubjectScores groups results by subject name, sorted by name.
func SubjectScores(results []models.GradedResult, names *NameLookup) []models.SubjectScore {
	bySubject := make(map[string]*models.SubjectScore)
	for _, r := range results {
		name := names.Subject(r.GradeSubjectID)
		score, ok := bySubject[name]
		if !ok {
			score = &models.SubjectScore{Subject: name}
			bySubject[name] = score
		}
		score.MarksObtained += r.MarksObtained
		score.TotalMarks += r.TotalMarks
		score.TestCount++
	}

	scores := make([]models.SubjectScore, 0, len(bySubject))
	for _, score := range bySubject {
		score.Percentage = models.Percentage(score.MarksObtained, score.TotalMarks)
		scores = append(scores, *score)
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].Subject < scores[j].Subject })
	return scores
}

// Trend emits one point per exam type, ordered by the earliest submission
// under that exam type. Subjects missing from an exam type are absent from
// its map rather than zero.
func Trend(results []models.GradedResult, names *NameLookup) []models.TrendPoint {
	type bucket struct {
		name     string
		earliest time.Time
		obtained map[string]int
		total    map[string]int
	}

	buckets := make(map[string]*bucket)
	for _, r := range results {
		examType := names.ExamType(r.ExamTypeID)
		b, ok := buckets[examType]
		if !ok {
			b = &bucket{name: examType, earliest: r.SubmittedAt, obtained: map[string]int{}, total: map[string]int{}}
			buckets[examType] = b
		}
		if r.SubmittedAt.Before(b.earliest) {
			b.earliest = r.SubmittedAt
		}
		subject := names.Subject(r.GradeSubjectID)
		b.obtained[subject] += r.MarksObtained
		b.total[subject] += r.TotalMarks
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].earliest.Equal(ordered[j].earliest) {
			return ordered[i].earliest.Before(ordered[j].earliest)
		}
		return ordered[i].name < ordered[j].name
	})

	points := make([]models.TrendPoint, 0, len(ordered))
	for _, b := range ordered {
		subjects := make(map[string]int, len(b.total))
		for subject, total := range b.total {
			subjects[subject] = models.Percentage(b.obtained[subject], total)
		}
		points = append(points, models.TrendPoint{ExamType: b.name, Subjects: subjects})
	}
	return points
}

// Breakdown groups answer marks by the name returned from key. Entries
// scoring below the threshold are flagged weak. Output is sorted by name.
func Breakdown(marks []models.AnswerMark, key func(models.AnswerMark) string) []models.BreakdownEntry {
	byName := make(map[string]*models.BreakdownEntry)
	for _, m := range marks {
		name := key(m)
		entry, ok := byName[name]
		if !ok {
			entry = &models.BreakdownEntry{Name: name}
			byName[name] = entry
		}
		entry.MarksAwarded += m.MarksAwarded
		entry.MarksMax += m.MaxMarks
		entry.TotalQuestions++
	}

	entries := make([]models.BreakdownEntry, 0, len(byName))
	for _, entry := range byName {
		entry.AvgScore = models.Percentage(entry.MarksAwarded, entry.MarksMax)
		entry.Weak = entry.AvgScore < models.WeakAreaThreshold
		entries = append(entries, *entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

func ChapterOf(m models.AnswerMark) string { return m.Chapter }
func TopicOf(m models.AnswerMark) string   { return m.Topic }

// WeakEntries returns the weak entries, lowest score first, capped at
// WeakAreaLimit.
func WeakEntries(entries []models.BreakdownEntry) []models.BreakdownEntry {
	weak := make([]models.BreakdownEntry, 0, models.WeakAreaLimit)
	for _, e := range entries {
		if e.Weak {
			weak = append(weak, e)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool {
		if weak[i].AvgScore != weak[j].AvgScore {
			return weak[i].AvgScore < weak[j].AvgScore
		}
		return weak[i].Name < weak[j].Name
	})
	if len(weak) > models.WeakAreaLimit {
		weak = weak[:models.WeakAreaLimit]
	}
	return weak
}

func resultIDs(results []models.GradedResult) (submissionIDs, subjectIDs, examTypeIDs []uint) {
	for _, r := range results {
		submissionIDs = append(submissionIDs, r.SubmissionID)
		subjectIDs = append(subjectIDs, r.GradeSubjectID)
		examTypeIDs = append(examTypeIDs, r.ExamTypeID)
	}
	return submissionIDs, subjectIDs, examTypeIDs
}
