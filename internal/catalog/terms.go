package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"billzsync/internal/models"

	"gorm.io/gorm"
)

const categoryTaxonomy = "product_cat"

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	slugStripRe  = regexp.MustCompile(`[^a-z0-9-]+`)
)

// TermService resolves taxonomy terms, creating them on first sight. Term
// reuse is by exact, case-sensitive name within a taxonomy.
type TermService struct {
	db *gorm.DB
}

func NewTermService(db *gorm.DB) *TermService {
	return &TermService{db: db}
}

// ResolveCategoryPath resolves a category path string ("A > B > C") into a
// chain of terms, each child parented to the prior term, and returns the
// leaf term id.
func (t *TermService) ResolveCategoryPath(path string) (uint, error) {
	var parent uint
	var leaf uint

	for _, part := range strings.Split(path, " > ") {
		name := whitespaceRe.ReplaceAllString(strings.TrimSpace(part), " ")
		if name == "" {
			continue
		}

		id, err := t.findOrCreate(categoryTaxonomy, name, parent)
		if err != nil {
			return 0, fmt.Errorf("resolve category %q: %w", name, err)
		}
		parent = id
		leaf = id
	}

	return leaf, nil
}

// ResolveAttributeTerm resolves one attribute term name within its taxonomy.
func (t *TermService) ResolveAttributeTerm(taxonomy, name string) (uint, error) {
	return t.findOrCreate(taxonomy, name, 0)
}

func (t *TermService) findOrCreate(taxonomy, name string, parent uint) (uint, error) {
	var term models.Term
	err := t.db.Where("taxonomy = ? AND name = ? AND parent_id = ?", taxonomy, name, parent).First(&term).Error
	if err == nil {
		return term.ID, nil
	}
	if err != gorm.ErrRecordNotFound {
		return 0, err
	}

	term = models.Term{
		Taxonomy: taxonomy,
		Name:     name,
		Slug:     Slugify(name),
		ParentID: parent,
	}
	if err := t.db.Create(&term).Error; err != nil {
		return 0, err
	}
	return term.ID, nil
}

// Slugify normalizes a term or option name into a taxonomy slug.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = whitespaceRe.ReplaceAllString(s, "-")
	s = slugStripRe.ReplaceAllString(s, "")
	return strings.Trim(s, "-")
}
