// Package render turns a product into a short vertical promo clip using
// ffmpeg. The clip composites the product image over a solid background
// with the title and price burned in, sized for the platform's 9:16 feed.
package render
