package prompts

// *** Task Prompts ***

var tasksInstructions = `Turn the following repository activity into a short list of distinct tasks or changes.

Rules:
- Use plain, human-readable language. No jargon unless the commits/PRs use it; then keep one consistent term (e.g. always "CMJ", not "C MJ" or "cmj").
- Titles: short, actionable headlines (e.g. "Add health check to Docker" or "Contact form with email"). Prefer verb-first. Max 8-10 words. Use correct spelling.
- Descriptions: 1-2 clear sentences a teammate can understand. Be specific; avoid "unknown specifics", "unresolved changes", or vague wording.
- Prefer 5-12 distinct tasks. Group small related changes into one task instead of listing every commit separately.
- Output format: You must respond with ONLY a valid JSON array. No markdown, no code fences (no backticks), no explanation before or after. Your entire response must start with [ and end with ]. Each array element must be an object with exactly two string keys: "title" and "description".

Example (output exactly in this style, no other text):
[
  {"title": "Add health check to Docker", "description": "Docker health check sleep duration was corrected and the build process was improved for reliability."},
  {"title": "Contact form with email notifications", "description": "New contact form was added to the website; submissions trigger email notifications."}
]`

var tasksInputTemplate = `Repository: %s
Time range: %s

Activity:
%s

Output the JSON array:`

// *** Workspace Prompts ***

// workspaceLogPromptTemplate is used when the git log was collected upfront
// and pasted into the prompt, the agent does not have to run git itself
var workspaceLogPromptTemplate = `%s Time range: %s to %s (%s). ` +
	`Below is the git activity in this period (commit messages and diffs). Analyze it and the codebase in this directory. ` +
	`Summarize: (1) what the commit messages say, (2) what actually changed in the code, (3) what has been going on across branches. ` +
	`Produce a short narrative summary (2-4 sentences) and 5-12 concrete tasks (what was done, what changed). ` +
	`Output ONLY a single JSON object with exactly two keys: "summary" (string, the narrative) and "tasks" (array of objects with "title" and "description"). ` +
	`No markdown, no code fences, no text outside the JSON. Example: {"summary": "...", "tasks": [{"title": "...", "description": "..."}, ...]}.

Git log:
%s`

// workspaceExplorePromptTemplate makes the agent run git on its own
var workspaceExplorePromptTemplate = `%s Time range: %s to %s (%s). ` +
	`Analyze what happened in this period: run ` + "`git branch -a`" + ` to see branches, then ` +
	"`git log -p --all --since=\"%s\" --until=\"%s\"`" + ` to see commit messages and code diffs across all branches. Use the codebase as needed. ` +
	`Summarize: (1) what the commit messages say, (2) what actually changed in the code, (3) what has been going on across branches. ` +
	`Produce a short narrative summary (2-4 sentences) and 5-12 concrete tasks (what was done, what changed). ` +
	`Output ONLY a single JSON object with exactly two keys: "summary" (string, the narrative) and "tasks" (array of objects with "title" and "description"). ` +
	`No markdown, no code fences, no text outside the JSON. Example: {"summary": "...", "tasks": [{"title": "...", "description": "..."}, ...]}.`
