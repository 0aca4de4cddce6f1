// Package model defines the core domain models used throughout the application.
package model

import "time"

// CandidateKind discriminates the variants of a Candidate.
type CandidateKind string

// Candidate kind constants.
const (
	KindFolder  CandidateKind = "FOLDER"
	KindApp     CandidateKind = "APP"
	KindCluster CandidateKind = "CLUSTER"
)

// Candidate is an object under evaluation for removal or relocation.
// Exactly one of the variant fields is set, matching Kind. Candidates are
// read-only inputs to the decision pipeline and are never mutated.
type Candidate struct {
	Folder  *FolderCandidate
	App     *InstalledApp
	Cluster *FileCluster
	Kind    CandidateKind
}

// FolderCandidate is a directory with its immediate file listing.
type FolderCandidate struct {
	Path      string
	FileNames []string
	SizeBytes int64
	FileCount int
}

// InstalledApp describes an installed application discovered by a scan.
type InstalledApp struct {
	InstallDate time.Time
	LastUsed    time.Time
	Name        string
	Publisher   string
	InstallPath string
	Version     string
	SizeBytes   int64
}

// FileCluster groups related files of one type for relocation analysis.
type FileCluster struct {
	RootPath    string
	ClusterType string // e.g. "video", "photo-library", "game-assets"
	Drive       string
	FileCount   int
	SizeBytes   int64
}

// Path returns the filesystem path the candidate refers to, independent of kind.
func (c Candidate) Path() string {
	switch c.Kind {
	case KindFolder:
		if c.Folder != nil {
			return c.Folder.Path
		}
	case KindApp:
		if c.App != nil {
			return c.App.InstallPath
		}
	case KindCluster:
		if c.Cluster != nil {
			return c.Cluster.RootPath
		}
	}
	return ""
}

// FileNames returns the file listing when the candidate carries one.
func (c Candidate) FileNames() []string {
	if c.Kind == KindFolder && c.Folder != nil {
		return c.Folder.FileNames
	}
	return nil
}

// FolderCandidateOf wraps a folder in a Candidate.
func FolderCandidateOf(f *FolderCandidate) Candidate {
	return Candidate{Kind: KindFolder, Folder: f}
}

// AppCandidateOf wraps an installed application in a Candidate.
func AppCandidateOf(a *InstalledApp) Candidate {
	return Candidate{Kind: KindApp, App: a}
}

// ClusterCandidateOf wraps a file cluster in a Candidate.
func ClusterCandidateOf(cl *FileCluster) Candidate {
	return Candidate{Kind: KindCluster, Cluster: cl}
}
