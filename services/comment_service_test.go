package services

import (
	"context"
	"encoding/json"
	"testing"

	"blog-api/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createComment(t *testing.T, env *testEnv, authorID, postID, parentID, content string) *models.Comment {
	t.Helper()

	comment, err := env.commentService.Create(context.Background(), models.CreateCommentRequest{
		Content:         content,
		PostID:          postID,
		ParentCommentID: parentID,
	}, authorID)
	require.NoError(t, err)
	return comment
}

func commentsCount(t *testing.T, env *testEnv, postID string) int {
	t.Helper()

	post, err := env.posts.GetByID(context.Background(), postID)
	require.NoError(t, err)
	return post.CommentsCount
}

func TestCreateComment(t *testing.T) {
	env := newTestEnv()
	alice := registerUser(t, env, "alice")
	bob := registerUser(t, env, "bob")
	post := createPost(t, env, alice.User.ID, models.CreatePostRequest{Title: "Commented", Status: "published"})

	comment, err := env.commentService.Create(context.Background(), models.CreateCommentRequest{
		Content:  "Nice post @alice",
		PostID:   post.ID,
		Mentions: []string{alice.User.ID, alice.User.ID},
	}, bob.User.ID)
	require.NoError(t, err)

	assert.Equal(t, models.CommentStatusApproved, comment.Status)
	assert.Nil(t, comment.ParentCommentID)
	require.Len(t, comment.Mentions, 1)
	assert.Equal(t, "alice", comment.Mentions[0].Username)
	assert.Equal(t, 1, commentsCount(t, env, post.ID))
}

func TestCreateCommentValidation(t *testing.T) {
	env := newTestEnv()
	alice := registerUser(t, env, "alice")
	ctx := context.Background()
	post := createPost(t, env, alice.User.ID, models.CreatePostRequest{Title: "First", Status: "published"})
	other := createPost(t, env, alice.User.ID, models.CreatePostRequest{Title: "Second", Status: "published"})
	parent := createComment(t, env, alice.User.ID, other.ID, "", "On the second post")

	_, err := env.commentService.Create(ctx, models.CreateCommentRequest{
		Content: "Orphan", PostID: uuid.NewString(),
	}, alice.User.ID)
	assert.IsType(t, models.ErrorNotFound{}, err)

	_, err = env.commentService.Create(ctx, models.CreateCommentRequest{
		Content: "Missing parent", PostID: post.ID, ParentCommentID: uuid.NewString(),
	}, alice.User.ID)
	assert.Equal(t, models.NewNotFound("Parent comment not found"), err)

	_, err = env.commentService.Create(ctx, models.CreateCommentRequest{
		Content: "Wrong post", PostID: post.ID, ParentCommentID: parent.ID,
	}, alice.User.ID)
	assert.Equal(t, models.NewBadRequest("Parent comment does not belong to this post"), err)

	_, err = env.commentService.Create(ctx, models.CreateCommentRequest{
		Content: "Ghost mention", PostID: post.ID, Mentions: []string{uuid.NewString()},
	}, alice.User.ID)
	assert.IsType(t, models.ErrorNotFound{}, err)

	assert.Equal(t, 0, commentsCount(t, env, post.ID))
}

func TestCommentOnOthersDraftIsNotFound(t *testing.T) {
	env := newTestEnv()
	alice := registerUser(t, env, "alice")
	bob := registerUser(t, env, "bob")
	draft := createPost(t, env, alice.User.ID, models.CreatePostRequest{Title: "Draft"})

	_, err := env.commentService.Create(context.Background(), models.CreateCommentRequest{
		Content: "Sneaky", PostID: draft.ID,
	}, bob.User.ID)
	assert.IsType(t, models.ErrorNotFound{}, err)
}

func TestRepliesAreLinkedToParent(t *testing.T) {
	env := newTestEnv()
	alice := registerUser(t, env, "alice")
	post := createPost(t, env, alice.User.ID, models.CreatePostRequest{Title: "Thread", Status: "published"})

	parent := createComment(t, env, alice.User.ID, post.ID, "", "Parent")
	first := createComment(t, env, alice.User.ID, post.ID, parent.ID, "First reply")
	second := createComment(t, env, alice.User.ID, post.ID, parent.ID, "Second reply")

	require.NotNil(t, first.ParentCommentID)
	assert.Equal(t, parent.ID, *first.ParentCommentID)

	found, err := env.commentService.FindOne(context.Background(), parent.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, second.ID}, found.ReplyIDs())
}

func TestFindByPostListsTopLevel(t *testing.T) {
	env := newTestEnv()
	alice := registerUser(t, env, "alice")
	ctx := context.Background()
	post := createPost(t, env, alice.User.ID, models.CreatePostRequest{Title: "Listing", Status: "published"})

	top := createComment(t, env, alice.User.ID, post.ID, "", "Top")
	createComment(t, env, alice.User.ID, post.ID, top.ID, "Reply")
	createComment(t, env, alice.User.ID, post.ID, "", "Another top")

	comments, total, err := env.commentService.FindByPost(ctx, post.ID, models.CommentFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, comments, 2)

	parentID := top.ID
	replies, total, err := env.commentService.FindAll(ctx, models.CommentFilter{ParentCommentID: &parentID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Reply", replies[0].Content)

	_, _, err = env.commentService.FindAll(ctx, models.CommentFilter{Status: "bogus"})
	assert.IsType(t, models.ErrorBadRequest{}, err)
}

func TestListedRepliesEncodeAsArrays(t *testing.T) {
	env := newTestEnv()
	alice := registerUser(t, env, "alice")
	post := createPost(t, env, alice.User.ID, models.CreatePostRequest{Title: "Shapes", Status: "published"})

	top := createComment(t, env, alice.User.ID, post.ID, "", "Top")
	createComment(t, env, alice.User.ID, post.ID, top.ID, "Reply")
	createComment(t, env, alice.User.ID, post.ID, "", "Lonely")

	comments, _, err := env.commentService.FindByPost(context.Background(), post.ID, models.CommentFilter{})
	require.NoError(t, err)
	require.Len(t, comments, 2)

	for _, c := range comments {
		require.NotNil(t, c.Replies, c.Content)
		for _, reply := range c.Replies {
			encoded, err := json.Marshal(reply)
			require.NoError(t, err)
			assert.Contains(t, string(encoded), `"replies":[]`)
		}
		encoded, err := json.Marshal(c)
		require.NoError(t, err)
		assert.NotContains(t, string(encoded), `"replies":null`)
	}

	found, err := env.commentService.FindOne(context.Background(), top.ID)
	require.NoError(t, err)
	require.Len(t, found.Replies, 1)
	assert.NotNil(t, found.Replies[0].Replies)
}

func TestGetThread(t *testing.T) {
	env := newTestEnv()
	alice := registerUser(t, env, "alice")
	post := createPost(t, env, alice.User.ID, models.CreatePostRequest{Title: "Deep", Status: "published"})

	root := createComment(t, env, alice.User.ID, post.ID, "", "Root")
	child := createComment(t, env, alice.User.ID, post.ID, root.ID, "Child")
	grandchild := createComment(t, env, alice.User.ID, post.ID, child.ID, "Grandchild")
	sibling := createComment(t, env, alice.User.ID, post.ID, root.ID, "Sibling")

	thread, err := env.commentService.GetThread(context.Background(), root.ID)
	require.NoError(t, err)

	require.Len(t, thread.Replies, 2)
	assert.Equal(t, child.ID, thread.Replies[0].ID)
	assert.Equal(t, sibling.ID, thread.Replies[1].ID)
	require.Len(t, thread.Replies[0].Replies, 1)
	assert.Equal(t, grandchild.ID, thread.Replies[0].Replies[0].ID)
	assert.Empty(t, thread.Replies[0].Replies[0].Replies)
	assert.Empty(t, thread.Replies[1].Replies)
}

func TestGetThreadStopsAtMaxDepth(t *testing.T) {
	env := newTestEnv()
	alice := registerUser(t, env, "alice")
	post := createPost(t, env, alice.User.ID, models.CreatePostRequest{Title: "Very Deep", Status: "published"})

	root := createComment(t, env, alice.User.ID, post.ID, "", "Level 0")
	parentID := root.ID
	for i := 0; i < MaxThreadDepth+5; i++ {
		parentID = createComment(t, env, alice.User.ID, post.ID, parentID, "Nested").ID
	}

	thread, err := env.commentService.GetThread(context.Background(), root.ID)
	require.NoError(t, err)

	depth := 0
	for node := thread; len(node.Replies) > 0; node = node.Replies[0] {
		depth++
	}
	assert.Equal(t, MaxThreadDepth, depth)
}

func TestUpdateComment(t *testing.T) {
	env := newTestEnv()
	alice := registerUser(t, env, "alice")
	bob := registerUser(t, env, "bob")
	ctx := context.Background()
	post := createPost(t, env, alice.User.ID, models.CreatePostRequest{Title: "Editable", Status: "published"})
	comment := createComment(t, env, bob.User.ID, post.ID, "", "Original")

	content := "Edited"
	updated, err := env.commentService.Update(ctx, comment.ID, models.UpdateCommentRequest{Content: &content}, bob.User.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Edited", updated.Content)
	assert.True(t, updated.IsEdited)
	assert.NotNil(t, updated.EditedAt)

	_, err = env.commentService.Update(ctx, comment.ID, models.UpdateCommentRequest{Content: &content}, alice.User.ID, false)
	assert.Equal(t, models.NewForbidden("You can only update your own comments"), err)

	bad := "bogus"
	_, err = env.commentService.Update(ctx, comment.ID, models.UpdateCommentRequest{Status: &bad}, bob.User.ID, false)
	assert.IsType(t, models.ErrorBadRequest{}, err)
}

func TestModerateComment(t *testing.T) {
	env := newTestEnv()
	alice := registerUser(t, env, "alice")
	ctx := context.Background()
	post := createPost(t, env, alice.User.ID, models.CreatePostRequest{Title: "Moderated", Status: "published"})
	comment := createComment(t, env, alice.User.ID, post.ID, "", "Buy cheap watches")

	moderated, err := env.commentService.Moderate(ctx, comment.ID, models.CommentStatusSpam)
	require.NoError(t, err)
	assert.Equal(t, models.CommentStatusSpam, moderated.Status)
	assert.False(t, moderated.IsEdited)

	_, err = env.commentService.Moderate(ctx, comment.ID, "bogus")
	assert.IsType(t, models.ErrorBadRequest{}, err)

	comments, _, err := env.commentService.FindByPost(ctx, post.ID, models.CommentFilter{})
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestRemoveCommentCascades(t *testing.T) {
	env := newTestEnv()
	alice := registerUser(t, env, "alice")
	bob := registerUser(t, env, "bob")
	ctx := context.Background()
	post := createPost(t, env, alice.User.ID, models.CreatePostRequest{Title: "Cascade", Status: "published"})

	parent := createComment(t, env, alice.User.ID, post.ID, "", "Parent")
	reply := createComment(t, env, bob.User.ID, post.ID, parent.ID, "Reply one")
	createComment(t, env, bob.User.ID, post.ID, parent.ID, "Reply two")
	createComment(t, env, alice.User.ID, post.ID, reply.ID, "Nested reply")
	keep := createComment(t, env, bob.User.ID, post.ID, "", "Unrelated")
	require.Equal(t, 5, commentsCount(t, env, post.ID))

	err := env.commentService.Remove(ctx, parent.ID, bob.User.ID, false)
	assert.IsType(t, models.ErrorForbidden{}, err)

	require.NoError(t, env.commentService.Remove(ctx, parent.ID, alice.User.ID, false))

	assert.Equal(t, 1, env.comments.count())
	_, err = env.commentService.FindOne(ctx, keep.ID)
	assert.NoError(t, err)
	_, err = env.commentService.FindOne(ctx, reply.ID)
	assert.IsType(t, models.ErrorNotFound{}, err)

	// The counter drops once per removal, not per deleted reply
	assert.Equal(t, 4, commentsCount(t, env, post.ID))
}

func TestAdminRemovesAnyComment(t *testing.T) {
	env := newTestEnv()
	alice := registerUser(t, env, "alice")
	bob := registerUser(t, env, "bob")
	post := createPost(t, env, alice.User.ID, models.CreatePostRequest{Title: "Admin", Status: "published"})
	comment := createComment(t, env, bob.User.ID, post.ID, "", "Bob's")

	require.NoError(t, env.commentService.Remove(context.Background(), comment.ID, alice.User.ID, true))
	assert.Equal(t, 0, env.comments.count())
}
