package client

import (
	"context"
	"fmt"
	"net/url"
)

// Post is a JSONPlaceholder-style post resource.
type Post struct {
	ID     int    `json:"id,omitempty"`
	UserID int    `json:"userId,omitempty"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Todo is a JSONPlaceholder-style todo resource.
type Todo struct {
	ID        int    `json:"id"`
	UserID    int    `json:"userId"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// GetTodo fetches a single todo by ID.
func (c *Client) GetTodo(ctx context.Context, id int) (*Todo, error) {
	resp, err := c.Get(ctx, fmt.Sprintf("/todos/%d", id), nil)
	if err != nil {
		return nil, err
	}
	if err := resp.EnsureSuccess(); err != nil {
		resp.Close()
		return nil, err
	}

	var todo Todo
	if err := resp.JSON(&todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// ListTodos fetches todos filtered by the given query parameters, e.g.
// userId and completed.
func (c *Client) ListTodos(ctx context.Context, query url.Values) ([]Todo, error) {
	resp, err := c.Get(ctx, "/todos", &RequestOptions{Query: query})
	if err != nil {
		return nil, err
	}
	if err := resp.EnsureSuccess(); err != nil {
		resp.Close()
		return nil, err
	}

	var todos []Todo
	if err := resp.JSON(&todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// CreatePost creates a new post.
func (c *Client) CreatePost(ctx context.Context, post Post) (*Post, error) {
	resp, err := c.Post(ctx, "/posts", &RequestOptions{JSON: post})
	if err != nil {
		return nil, err
	}
	if err := resp.EnsureSuccess(); err != nil {
		resp.Close()
		return nil, err
	}

	var created Post
	if err := resp.JSON(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePost replaces an existing post.
func (c *Client) UpdatePost(ctx context.Context, post Post) (*Post, error) {
	resp, err := c.Put(ctx, fmt.Sprintf("/posts/%d", post.ID), &RequestOptions{JSON: post})
	if err != nil {
		return nil, err
	}
	if err := resp.EnsureSuccess(); err != nil {
		resp.Close()
		return nil, err
	}

	var updated Post
	if err := resp.JSON(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeletePost removes a post by ID.
func (c *Client) DeletePost(ctx context.Context, id int) error {
	resp, err := c.Delete(ctx, fmt.Sprintf("/posts/%d", id), nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	return resp.EnsureSuccess()
}
