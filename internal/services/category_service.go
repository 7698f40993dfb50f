package services

import (
	"sort"
	"strings"
	"verba/internal/db"
	"verba/internal/models"

	"gorm.io/gorm"
)

// CategoryService maintains the category forest: ordered insertion,
// ancestor/descendant queries and cascade-safe deletion.
type CategoryService struct{}

func NewCategoryService() *CategoryService {
	return &CategoryService{}
}

// Create inserts a category under parentID (nil = root), filling a blank
// slug from the title.
func (s *CategoryService) Create(category *models.Category, parentID *uint) error {
	if strings.TrimSpace(category.Title) == "" {
		return models.ValidationError{"title": "title must not be empty"}
	}

	if parentID != nil {
		var parent models.Category
		if err := db.DB.First(&parent, *parentID).Error; err != nil {
			return models.ErrNotFound
		}
	}
	category.ParentID = parentID

	if category.Slug == "" {
		slug, err := UniqueSlug(db.DB, &models.Category{}, category.Title)
		if err != nil {
			return err
		}
		category.Slug = slug
	}

	return db.DB.Create(category).Error
}

// Move reparents a category. The parent chain of the new parent is walked
// before anything is written so no node can become its own ancestor.
func (s *CategoryService) Move(id uint, newParentID *uint) error {
	var category models.Category
	if err := db.DB.First(&category, id).Error; err != nil {
		return models.ErrNotFound
	}

	if newParentID != nil {
		if *newParentID == id {
			return models.ErrCategoryCycle
		}
		ancestors, err := s.Ancestors(*newParentID)
		if err != nil {
			return err
		}
		for _, a := range ancestors {
			if a.ID == id {
				return models.ErrCategoryCycle
			}
		}
		var parent models.Category
		if err := db.DB.First(&parent, *newParentID).Error; err != nil {
			return models.ErrNotFound
		}
	}

	return db.DB.Model(&category).Update("parent_id", newParentID).Error
}

// Delete removes the category and its entire subtree in one transaction.
// If any article references any node of the subtree the whole operation is
// rejected and nothing is deleted.
func (s *CategoryService) Delete(id uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			return models.ErrNotFound
		}

		ids, err := subtreeIDs(tx, id)
		if err != nil {
			return err
		}

		var attached int64
		if err := tx.Model(&models.Article{}).Where("category_id IN ?", ids).Count(&attached).Error; err != nil {
			return err
		}
		if attached > 0 {
			return models.ErrCategoryInUse
		}

		return tx.Where("id IN ?", ids).Delete(&models.Category{}).Error
	})
}

// Ancestors returns the parent chain from the immediate parent up to the
// root. The walk is bounded by tree depth; a defensive cap guards against a
// corrupted chain.
func (s *CategoryService) Ancestors(id uint) ([]models.Category, error) {
	var chain []models.Category
	var current models.Category
	if err := db.DB.First(&current, id).Error; err != nil {
		return nil, models.ErrNotFound
	}

	const maxDepth = 1000
	for i := 0; current.ParentID != nil && i < maxDepth; i++ {
		var parent models.Category
		if err := db.DB.First(&parent, *current.ParentID).Error; err != nil {
			return nil, err
		}
		chain = append(chain, parent)
		current = parent
	}
	return chain, nil
}

// Descendants returns every node below id, depth annotated, in breadth-first
// order.
func (s *CategoryService) Descendants(id uint) ([]models.Category, error) {
	var result []models.Category
	frontier := []uint{id}
	depth := 1

	for len(frontier) > 0 {
		var children []models.Category
		if err := db.DB.Where("parent_id IN ?", frontier).Order("title ASC").Find(&children).Error; err != nil {
			return nil, err
		}
		if len(children) == 0 {
			break
		}
		frontier = frontier[:0]
		for _, c := range children {
			c.Depth = depth
			result = append(result, c)
			frontier = append(frontier, c.ID)
		}
		depth++
	}
	return result, nil
}

// ChildrenOrdered lists direct children ordered by title ascending.
// parentID nil lists the roots.
func (s *CategoryService) ChildrenOrdered(parentID *uint) ([]models.Category, error) {
	var children []models.Category
	q := db.DB.Order("title ASC")
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	err := q.Find(&children).Error
	return children, err
}

// BySlug resolves a category for the /category/:slug pages.
func (s *CategoryService) BySlug(slug string) (models.Category, error) {
	var category models.Category
	if err := db.DB.Where("slug = ?", slug).First(&category).Error; err != nil {
		return category, models.ErrNotFound
	}
	return category, nil
}

// subtreeIDs sweeps the reachable nodes from root, root included.
func subtreeIDs(tx *gorm.DB, root uint) ([]uint, error) {
	ids := []uint{root}
	frontier := []uint{root}

	for len(frontier) > 0 {
		var next []uint
		if err := tx.Model(&models.Category{}).Where("parent_id IN ?", frontier).Pluck("id", &next).Error; err != nil {
			return nil, err
		}
		ids = append(ids, next...)
		frontier = next
	}
	return ids, nil
}

// BuildForest flattens categories into render order: roots first, children
// under their parent, each level sorted by title, Depth filled for
// indentation. Pure so the navigation tree is testable without a database.
func BuildForest(categories []models.Category) []models.Category {
	children := make(map[uint][]models.Category)
	var roots []models.Category
	for _, c := range categories {
		if c.ParentID == nil {
			roots = append(roots, c)
		} else {
			children[*c.ParentID] = append(children[*c.ParentID], c)
		}
	}

	byTitle := func(list []models.Category) {
		sort.Slice(list, func(i, j int) bool { return list[i].Title < list[j].Title })
	}
	byTitle(roots)

	var out []models.Category
	var walk func(node models.Category, depth int)
	walk = func(node models.Category, depth int) {
		node.Depth = depth
		out = append(out, node)
		kids := children[node.ID]
		byTitle(kids)
		for _, k := range kids {
			walk(k, depth+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
	return out
}
