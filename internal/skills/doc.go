// Package skills reads the markdown skills library that crucible draws
// checklists from. It locates the library, extracts bounded hint documents
// for review types and tasks, recommends skills for a project and prompt,
// and generates per-tool rules files pointing at the library.
package skills
