package sharepoint

import "time"

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SampleDocuments returns the document library sample set
func SampleDocuments() []Document {
	return []Document{
		{
			ID:       "doc1",
			Name:     "Legal Contract Template.docx",
			Path:     "/Documents/Legal/Templates/",
			Modified: mustTime("2023-04-15T10:30:00Z"),
			Size:     245000,
		},
		{
			ID:       "doc2",
			Name:     "Client Agreement.pdf",
			Path:     "/Documents/Clients/",
			Modified: mustTime("2023-04-10T14:20:00Z"),
			Size:     1200000,
		},
		{
			ID:       "doc3",
			Name:     "Compliance Guidelines.pdf",
			Path:     "/Documents/Compliance/",
			Modified: mustTime("2023-03-22T09:15:00Z"),
			Size:     3400000,
		},
		{
			ID:       "doc4",
			Name:     "Case Study - Intellectual Property.docx",
			Path:     "/Documents/Case Studies/",
			Modified: mustTime("2023-04-05T16:45:00Z"),
			Size:     520000,
		},
		{
			ID:       "doc5",
			Name:     "Legal Research Notes.docx",
			Path:     "/Documents/Research/",
			Modified: mustTime("2023-04-18T11:10:00Z"),
			Size:     180000,
		},
	}
}

// SampleReports returns the report sample set
func SampleReports() []Report {
	return []Report{
		{
			ID:      "rep1",
			Name:    "Monthly Activity Summary - March 2023",
			Created: mustTime("2023-04-02T08:00:00Z"),
			Type:    "monthly",
		},
		{
			ID:      "rep2",
			Name:    "Client Interaction Analysis Q1 2023",
			Created: mustTime("2023-04-05T14:30:00Z"),
			Type:    "quarterly",
		},
		{
			ID:      "rep3",
			Name:    "Document Usage Statistics",
			Created: mustTime("2023-04-10T09:45:00Z"),
			Type:    "analytics",
		},
	}
}
