package blog

import "github.com/magabrotheeeer/accountable/internal/models"

var posts = []models.BlogPost{
	{
		ID:       1,
		Title:    "The Hawthorne Effect: Why Being Watched Works",
		Excerpt:  "Studies show that individuals modify an aspect of their behavior in response to their awareness of being observed. Here's how to harness this for productivity.",
		Image:    "https://images.unsplash.com/photo-1517048676732-d65bc937f952?auto=format&fit=crop&w=1650&q=80",
		ReadTime: "5 min read",
		Date:     "Oct 12, 2023",
		Content: `Ever noticed how you sit up straighter when your boss walks by?
That isn't coincidence. It's science.

### What is the Hawthorne Effect?

People change their behavior when they know they are being observed.
The original study at Western Electric's Hawthorne Works in the 1920s found that
productivity rose simply because researchers were watching.

### Applying this to Modern Work

Remote work removed the natural accountability of the office. Nobody walks past
your desk, and without observation the brain defaults to procrastination.

### How Accountable Uses This

Scheduling a call with a real human creates an *observation event*. Knowing that
someone will check in is enough to trigger focus.`,
	},
	{
		ID:       2,
		Title:    "Body Doubling: The ADHD Secret Weapon",
		Excerpt:  "Body doubling involves doing a task in the presence of another person. The other person acts as an anchor for your attention.",
		Image:    "https://images.unsplash.com/photo-1522202176988-66273c2fd55f?auto=format&fit=crop&w=1651&q=80",
		ReadTime: "4 min read",
		Date:     "Sep 28, 2023",
		Content: `For many people the hardest part of a task is starting it.
Enter **body doubling**.

### What is a Body Double?

Another person who is present while you work. They don't help and don't talk.
Their presence anchors your attention.

### Why It Works

- It reduces the anxiety of starting a difficult task.
- It helps regulate executive function.
- It provides a container for the work session.

### Virtual Body Doubling

Verification calls act as the finish line of a session: you work knowing it has
a hard stop and a verification step.`,
	},
	{
		ID:       3,
		Title:    "The Social Contract of Getting Things Done",
		Excerpt:  "Why promising a stranger you will finish a task is often more effective than promising yourself.",
		Image:    "https://images.unsplash.com/photo-1521737604893-d14cc237f11d?auto=format&fit=crop&w=1663&q=80",
		ReadTime: "6 min read",
		Date:     "Sep 15, 2023",
		Content: `We break promises to ourselves all the time. Breaking a promise to
someone else stings.

### Social Pressure is a Tool

We want to be seen as reliable. Failing a task we promised to finish risks that image.

### The Stranger Effect

Friends forgive us. A professional accountability partner is there for one purpose:
to see if the job is done.

### Commitment Devices

Paying for Accountable is a financial commitment device. Scheduling the call is a
social one. Together they make doing the work the only logical option.`,
	},
}
