// Package addcategory adds a catalog category.
package addcategory
